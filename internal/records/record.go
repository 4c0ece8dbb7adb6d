// Package records keeps the audit trail of classified trade offers: one
// record per evaluation, journaled in memory and flushed to blob storage by
// the archive job.
package records

import (
	"time"

	"github.com/google/uuid"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// OfferRecord is one classified trade offer, including the item-by-item
// valuation narrative. Held offers are resolved by a human; the record is
// what they resolve them from.
type OfferRecord struct {
	ID          string                `json:"id"`
	OfferID     string                `json:"offer_id,omitempty"`
	Partner     string                `json:"partner"`
	Response    economy.OfferResponse `json:"response"`
	OurValue    int                   `json:"our_value"`
	TheirValue  int                   `json:"their_value"`
	Narrative   string                `json:"narrative"`
	EvaluatedAt time.Time             `json:"evaluated_at"`
}

// NewOfferRecord builds a record for one evaluation result.
func NewOfferRecord(offerID string, result *economy.TradeOffer, evaluatedAt time.Time) OfferRecord {
	return OfferRecord{
		ID:          uuid.NewString(),
		OfferID:     offerID,
		Partner:     result.Partner,
		Response:    result.Response,
		OurValue:    result.OurValue,
		TheirValue:  result.TheirValue,
		Narrative:   result.Narrative,
		EvaluatedAt: evaluatedAt.UTC(),
	}
}
