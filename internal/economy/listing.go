package economy

import "fmt"

// Listing is a public offer for an unusual item: either a SellListing for an
// item the bot owns, or a BuyListing for an item it wants.
//
// A listing can be non-visible, meaning it is not ready to publish: its price
// is unset, or (for sell listings) its asset ID is unknown. Visibility is
// always derived from those fields, never stored, so it can never
// desynchronize from the state that defines it.
type Listing interface {
	// Item returns the listing's immutable identity.
	Item() Item
	// CommunityPrice returns the market consensus range, refreshed each
	// catalog cycle.
	CommunityPrice() PriceRange
	// SetCommunityPrice replaces the consensus range.
	SetCommunityPrice(PriceRange)
	// Price returns the bot's price, or ErrNotVisible when it is unset.
	Price() (Price, error)
	// SetPrice sets the bot's price. A nil price makes the listing
	// non-visible.
	SetPrice(*Price)
	// Visible reports whether the listing is ready to publish.
	Visible() bool
	// Priority returns the presentation priority; nil sorts last. It has
	// no effect on pricing or evaluation.
	Priority() *int
	// SetPriority sets the presentation priority.
	SetPriority(*int)
	// Copy returns a deep copy.
	Copy() Listing
}

// listingBase carries the state shared by both listing variants.
type listingBase struct {
	item      Item
	community PriceRange
	price     *Price
	priority  *int
}

func newListingBase(item Item, community PriceRange) (listingBase, error) {
	if item.Quality != QualityUnusual {
		return listingBase{}, fmt.Errorf("economy: listing for non-unusual item %q: %w", item.Name, ErrInvalidArgument)
	}
	return listingBase{item: item, community: community}, nil
}

func (b *listingBase) Item() Item                     { return b.item }
func (b *listingBase) CommunityPrice() PriceRange     { return b.community }
func (b *listingBase) SetCommunityPrice(r PriceRange) { b.community = r }

func (b *listingBase) SetPrice(p *Price) {
	if p == nil {
		b.price = nil
		return
	}
	v := *p
	b.price = &v
}

func (b *listingBase) Priority() *int { return b.priority }

func (b *listingBase) SetPriority(p *int) {
	if p == nil {
		b.priority = nil
		return
	}
	v := *p
	b.priority = &v
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyPricePtr(p *Price) *Price {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ComparePriority orders listings for presentation: lower priority first,
// unset priority last, ties broken with sell listings before buy listings.
func ComparePriority(a, b Listing) int {
	pa, pb := a.Priority(), b.Priority()
	switch {
	case pa == nil && pb == nil:
		_, aSell := a.(*SellListing)
		_, bSell := b.(*SellListing)
		if aSell == bSell {
			return 0
		}
		if aSell {
			return -1
		}
		return 1
	case pa == nil:
		return 1
	case pb == nil:
		return -1
	default:
		return *pa - *pb
	}
}
