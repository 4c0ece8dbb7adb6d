package economy

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// OfferResponse is the three-way classification of a trade proposal.
type OfferResponse string

const (
	ResponseAccept  OfferResponse = "accept"
	ResponseDecline OfferResponse = "decline"
	// ResponseHold defers the proposal to manual review.
	ResponseHold OfferResponse = "hold"
)

// Offer is an incoming trade proposal resolved into structured line items.
// Sides are named from the bot's perspective.
type Offer struct {
	Partner   string
	ToGive    []InventoryItem
	ToReceive []InventoryItem
}

// EvalOptions tunes offer classification.
type EvalOptions struct {
	// Forgiveness in [0,1] scales down the bot's own total so a small
	// deficit in its favor does not cause a nuisance decline.
	Forgiveness float64
	// CanHold permits the Hold classification; when false, offers that
	// would be held are declined instead.
	CanHold bool
	// Owners are partner IDs whose offers are always accepted.
	Owners []string
}

// unknownValueSentinel stands in for the total of a side containing an item
// the bot cannot price. It dominates any realistic opposing total without
// overflowing if several such totals are ever summed.
const unknownValueSentinel = math.MaxInt32 / 2

// TradeOffer is an evaluated trade proposal. It is immutable once built; the
// orchestrator consumes it to mutate the listing collections.
type TradeOffer struct {
	Response   OfferResponse
	ToGive     []InventoryItem
	ToReceive  []InventoryItem
	OurValue   int
	TheirValue int
	Partner    string
	// Narrative is the audit trail: every line item with its resolved
	// value, both totals, and the classification reason. It is
	// deterministic given the same inputs.
	Narrative string
}

// currencyScrapValue returns the fixed scrap value of one of the four
// currency items, and whether the name is a currency item at all.
func currencyScrapValue(name string, keyScrapRatio int) (int, bool) {
	switch name {
	case KeyItemName:
		return keyScrapRatio, true
	case RefinedMetalName:
		return ScrapPerRefined, true
	case ReclaimedMetalName:
		return 3, true
	case ScrapMetalName:
		return 1, true
	default:
		return 0, false
	}
}

// lineValue resolves one line item against a listing collection. ok is false
// when the item's value is unknown: it is neither a currency item nor a
// visible listing in the collection.
func lineValue(item InventoryItem, listings *Collection, keyScrapRatio int) (int, bool) {
	if v, isCurrency := currencyScrapValue(item.Name, keyScrapRatio); isCurrency {
		return v, true
	}
	l, found := listings.Get(item.Item)
	if !found {
		return 0, false
	}
	price, err := l.Price()
	if err != nil {
		// Present but non-visible listings cannot be valued.
		return 0, false
	}
	v, err := price.ScrapValue(keyScrapRatio)
	if err != nil {
		return 0, false
	}
	return v, true
}

// EvaluateOffer values both sides of a proposal and classifies it.
//
// Items the bot would give away are valued against the sell-side collection;
// an unknown there forces the bot's total to an effectively-infinite
// sentinel so an unpriced item can never be auto-accepted away. Items the
// bot would receive are valued against the buy-side collection; an unknown
// there is worth zero: a risk to review, not a blocker. The asymmetry is
// intentional.
//
// Classification, in priority order: partner in the owner list accepts
// unconditionally; ourValue*(1-forgiveness) <= theirValue accepts; an
// unknown on either side holds when holding is permitted; otherwise decline.
func EvaluateOffer(offer Offer, sells, buys *Collection, keyScrapRatio int, opts EvalOptions) (*TradeOffer, error) {
	if err := checkRatio(keyScrapRatio); err != nil {
		return nil, err
	}
	if math.IsNaN(opts.Forgiveness) || opts.Forgiveness < 0 || opts.Forgiveness > 1 {
		return nil, fmt.Errorf("economy: forgiveness %v: %w", opts.Forgiveness, ErrInvalidArgument)
	}
	if sells == nil || buys == nil {
		return nil, fmt.Errorf("economy: evaluate offer without collections: %w", ErrInvalidArgument)
	}

	var (
		ourValue, theirValue     int
		ourUnknown, theirUnknown bool
		narrative                strings.Builder
	)

	narrative.WriteString("Our items include:")
	for _, item := range offer.ToGive {
		narrative.WriteString("\n")
		v, known := lineValue(item, sells, keyScrapRatio)
		if known {
			fmt.Fprintf(&narrative, "%s, valued at %d", item, v)
			ourValue += v
		} else {
			fmt.Fprintf(&narrative, "%s, not in our pricelist", item)
			ourUnknown = true
			ourValue = unknownValueSentinel
		}
	}

	narrative.WriteString("\n\nTheir items include:")
	for _, item := range offer.ToReceive {
		narrative.WriteString("\n")
		v, known := lineValue(item, buys, keyScrapRatio)
		if known {
			fmt.Fprintf(&narrative, "%s, valued at %d", item, v)
			theirValue += v
		} else {
			fmt.Fprintf(&narrative, "%s, not in our pricelist", item)
			theirUnknown = true
		}
	}

	fmt.Fprintf(&narrative, "\n\nOur value: %d Their value: %d", ourValue, theirValue)

	var response OfferResponse
	switch {
	case slices.Contains(opts.Owners, offer.Partner):
		response = ResponseAccept
		fmt.Fprintf(&narrative, "\n\nThe offer was accepted because %s is an owner.", offer.Partner)
	case float64(ourValue)*(1-opts.Forgiveness) <= float64(theirValue):
		response = ResponseAccept
		fmt.Fprintf(&narrative, "\n\nThe offer with %s was accepted because our value was less than or equal to their value.", offer.Partner)
	case (ourUnknown || theirUnknown) && opts.CanHold:
		response = ResponseHold
		fmt.Fprintf(&narrative, "\n\nThe offer with %s was held because it contained unpriced items.", offer.Partner)
	default:
		response = ResponseDecline
		fmt.Fprintf(&narrative, "\n\nThe offer with %s was declined because our value was greater than their value.", offer.Partner)
	}

	return &TradeOffer{
		Response:   response,
		ToGive:     slices.Clone(offer.ToGive),
		ToReceive:  slices.Clone(offer.ToReceive),
		OurValue:   ourValue,
		TheirValue: theirValue,
		Partner:    offer.Partner,
		Narrative:  narrative.String(),
	}, nil
}
