package handler

import (
	"net/http"
	"time"

	"github.com/unusualtrade/hatbot/internal/bot"
)

// StatusHandler serves a summary of the bot's current state.
type StatusHandler struct {
	mode      string
	startedAt time.Time
	bot       *bot.TradingBot
}

// NewStatusHandler creates a StatusHandler for the given bot.
func NewStatusHandler(mode string, startedAt time.Time, b *bot.TradingBot) *StatusHandler {
	return &StatusHandler{mode: mode, startedAt: startedAt, bot: b}
}

// GetStatus responds with the run mode, uptime, and listing counts.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	stats := h.bot.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":            h.mode,
		"uptime":          time.Since(h.startedAt).Round(time.Second).String(),
		"account_id":      h.bot.AccountID(),
		"sell_listings":   stats.SellListings,
		"visible_sells":   stats.VisibleSells,
		"buy_listings":    stats.BuyListings,
		"visible_buys":    stats.VisibleBuys,
		"key_scrap_ratio": stats.KeyScrapRatio,
		"catalog_loaded":  stats.CatalogLoaded,
	})
}
