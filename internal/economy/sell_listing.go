package economy

import (
	"encoding/json"
	"fmt"
	"time"
)

// acquiredDateLayout is the snapshot form of the acquisition date. Only the
// calendar date matters: pricing decay works in whole days.
const acquiredDateLayout = "2006-01-02"

// SellListing is an unusual item in the bot's inventory together with the
// sell listing for it. The purchase price and acquisition date are fixed at
// construction; the asset ID is usually unknown at first and filled in later
// by inventory reconciliation.
//
// A SellListing is visible iff both its price and its asset ID are set.
type SellListing struct {
	listingBase
	purchasePrice Price
	acquiredAt    time.Time
	assetID       string
}

// NewSellListing builds a SellListing. assetID may be empty, in which case
// the listing stays non-visible until the ID is reconciled.
func NewSellListing(item Item, community PriceRange, purchasePrice Price, acquiredAt time.Time, assetID string) (*SellListing, error) {
	base, err := newListingBase(item, community)
	if err != nil {
		return nil, err
	}
	return &SellListing{
		listingBase:   base,
		purchasePrice: purchasePrice,
		acquiredAt:    acquiredAt.Truncate(24 * time.Hour),
		assetID:       assetID,
	}, nil
}

// SellListingFromBuy promotes a filled BuyListing into a SellListing,
// carrying the buy price over as the purchase price. The asset ID and the
// bot price start unset.
func SellListingFromBuy(b *BuyListing, now time.Time) (*SellListing, error) {
	price, err := b.Price()
	if err != nil {
		return nil, fmt.Errorf("economy: promote buy listing %s: %w", b.Item(), err)
	}
	return NewSellListing(b.Item(), b.CommunityPrice(), price, now, "")
}

// PurchasePrice returns the price the item was acquired at.
func (s *SellListing) PurchasePrice() Price { return s.purchasePrice }

// AcquiredAt returns the acquisition date.
func (s *SellListing) AcquiredAt() time.Time { return s.acquiredAt }

// AgeDays returns the number of whole days since acquisition.
func (s *SellListing) AgeDays(now time.Time) int {
	d := int(now.Sub(s.acquiredAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// AssetID returns the marketplace asset ID, or the empty string while it is
// unknown.
func (s *SellListing) AssetID() string { return s.assetID }

// SetAssetID attaches the marketplace asset ID, making the listing eligible
// for visibility.
func (s *SellListing) SetAssetID(id string) { s.assetID = id }

// Visible reports whether both the price and the asset ID are set.
func (s *SellListing) Visible() bool {
	return s.price != nil && s.assetID != ""
}

// Price returns the bot's price, or ErrNotVisible when the listing cannot be
// priced.
func (s *SellListing) Price() (Price, error) {
	if !s.Visible() {
		return Price{}, fmt.Errorf("economy: sell listing %s: %w", s.item, ErrNotVisible)
	}
	return *s.price, nil
}

// Copy returns a deep copy.
func (s *SellListing) Copy() Listing {
	cp := *s
	cp.price = copyPricePtr(s.price)
	cp.priority = copyIntPtr(s.priority)
	return &cp
}

type sellListingDTO struct {
	Name           string     `json:"name"`
	Effect         int        `json:"effect"`
	CommunityPrice PriceRange `json:"communityPrice"`
	Price          *Price     `json:"price"`
	BoughtAt       Price      `json:"boughtAt"`
	DateBought     string     `json:"dateBought"`
	ID             *string    `json:"id"`
	Priority       *int       `json:"priority,omitempty"`
}

// MarshalJSON serializes the listing for the persisted snapshot.
func (s *SellListing) MarshalJSON() ([]byte, error) {
	dto := sellListingDTO{
		Name:           s.item.Name,
		Effect:         s.item.EffectCode,
		CommunityPrice: s.community,
		Price:          s.price,
		BoughtAt:       s.purchasePrice,
		DateBought:     s.acquiredAt.Format(acquiredDateLayout),
		Priority:       s.priority,
	}
	if s.assetID != "" {
		dto.ID = &s.assetID
	}
	return json.Marshal(dto)
}

// UnmarshalJSON restores a listing from its snapshot form.
func (s *SellListing) UnmarshalJSON(data []byte) error {
	var dto sellListingDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return fmt.Errorf("economy: decode sell listing: %w", err)
	}
	effect, err := EffectForCode(dto.Effect)
	if err != nil {
		return err
	}
	item, err := NewItem(dto.Name, QualityUnusual, effect)
	if err != nil {
		return err
	}
	acquired, err := time.Parse(acquiredDateLayout, dto.DateBought)
	if err != nil {
		return fmt.Errorf("economy: decode sell listing date %q: %w", dto.DateBought, ErrMalformedData)
	}
	assetID := ""
	if dto.ID != nil {
		assetID = *dto.ID
	}
	restored, err := NewSellListing(item, dto.CommunityPrice, dto.BoughtAt, acquired, assetID)
	if err != nil {
		return err
	}
	restored.SetPrice(dto.Price)
	restored.SetPriority(dto.Priority)
	*s = *restored
	return nil
}

func (s *SellListing) String() string {
	return fmt.Sprintf("sell %s", s.item)
}
