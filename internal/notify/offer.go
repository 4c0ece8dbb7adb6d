package notify

import (
	"context"
	"fmt"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// Event types emitted for trade offer classifications. Operators usually
// filter down to held offers, which are the only ones needing a human.
const (
	EventOfferAccepted = "offer_accepted"
	EventOfferHeld     = "offer_held"
	EventOfferDeclined = "offer_declined"
)

func eventForResponse(r economy.OfferResponse) string {
	switch r {
	case economy.ResponseAccept:
		return EventOfferAccepted
	case economy.ResponseHold:
		return EventOfferHeld
	default:
		return EventOfferDeclined
	}
}

// NotifyOffer reports a classified trade offer on every configured channel,
// subject to the event filter. The narrative carries the full item-by-item
// valuation.
func (n *Notifier) NotifyOffer(ctx context.Context, offerID string, result *economy.TradeOffer) error {
	if result == nil {
		return fmt.Errorf("notify: nil offer result: %w", economy.ErrInvalidArgument)
	}
	title := fmt.Sprintf("Offer %s from %s: %s", offerID, result.Partner, result.Response)
	return n.Notify(ctx, eventForResponse(result.Response), title, result.Narrative)
}
