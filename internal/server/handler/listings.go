package handler

import (
	"net/http"

	"github.com/unusualtrade/hatbot/internal/bot"
)

// ListingsHandler dumps the bot's current listings.
type ListingsHandler struct {
	bot *bot.TradingBot
}

// NewListingsHandler creates a ListingsHandler for the given bot.
func NewListingsHandler(b *bot.TradingBot) *ListingsHandler {
	return &ListingsHandler{bot: b}
}

// ListListings responds with a snapshot of every sell and buy listing the bot
// currently tracks. The snapshot is a deep copy, so serialization never races
// with the trading loop.
// GET /api/listings
func (h *ListingsHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bot.Snapshot())
}
