package economy

import (
	"encoding/json"
	"fmt"
)

// BuyListing is a standing offer to buy an unusual item the bot wants. Its
// price starts unset and is filled in by the first pricing pass; it is
// visible iff the price is set.
type BuyListing struct {
	listingBase
}

// NewBuyListing builds a BuyListing with an unset price.
func NewBuyListing(item Item, community PriceRange) (*BuyListing, error) {
	base, err := newListingBase(item, community)
	if err != nil {
		return nil, err
	}
	return &BuyListing{listingBase: base}, nil
}

// Visible reports whether the price is set.
func (b *BuyListing) Visible() bool { return b.price != nil }

// Price returns the bot's price, or ErrNotVisible when the price is unset.
func (b *BuyListing) Price() (Price, error) {
	if !b.Visible() {
		return Price{}, fmt.Errorf("economy: buy listing %s: %w", b.item, ErrNotVisible)
	}
	return *b.price, nil
}

// Copy returns a deep copy.
func (b *BuyListing) Copy() Listing {
	cp := *b
	cp.price = copyPricePtr(b.price)
	cp.priority = copyIntPtr(b.priority)
	return &cp
}

type buyListingDTO struct {
	Name           string     `json:"name"`
	Effect         int        `json:"effect"`
	CommunityPrice PriceRange `json:"communityPrice"`
	Price          *Price     `json:"price"`
	Priority       *int       `json:"priority,omitempty"`
}

// MarshalJSON serializes the listing for the persisted snapshot.
func (b *BuyListing) MarshalJSON() ([]byte, error) {
	return json.Marshal(buyListingDTO{
		Name:           b.item.Name,
		Effect:         b.item.EffectCode,
		CommunityPrice: b.community,
		Price:          b.price,
		Priority:       b.priority,
	})
}

// UnmarshalJSON restores a listing from its snapshot form.
func (b *BuyListing) UnmarshalJSON(data []byte) error {
	var dto buyListingDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return fmt.Errorf("economy: decode buy listing: %w", err)
	}
	effect, err := EffectForCode(dto.Effect)
	if err != nil {
		return err
	}
	item, err := NewItem(dto.Name, QualityUnusual, effect)
	if err != nil {
		return err
	}
	restored, err := NewBuyListing(item, dto.CommunityPrice)
	if err != nil {
		return err
	}
	restored.SetPrice(dto.Price)
	restored.SetPriority(dto.Priority)
	*b = *restored
	return nil
}

func (b *BuyListing) String() string {
	return fmt.Sprintf("buy %s", b.item)
}
