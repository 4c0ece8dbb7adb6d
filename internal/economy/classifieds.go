package economy

import (
	"encoding/json"
	"fmt"
	"math"
)

// ClassifiedListing is one listing from a marketplace classifieds search.
type ClassifiedListing struct {
	// AccountID is the listing owner's marketplace account ID.
	AccountID string
	// Price is the asking (or offering) price.
	Price Price
	// HasEffect reports whether the listing names a concrete particle
	// effect. Generic "any effect" listings are not comparable to a
	// specific item and are filtered out before averaging.
	HasEffect bool
}

// Classifieds is the result of a classifieds search for one item: the live
// buy and sell listings in the marketplace's own ordering. Averaging
// strategies use the first N listings as returned; no re-sorting.
type Classifieds struct {
	Buy  []ClassifiedListing
	Sell []ClassifiedListing
}

type classifiedListingDTO struct {
	SteamID    string `json:"steamid"`
	Currencies struct {
		Keys  float64 `json:"keys"`
		Metal float64 `json:"metal"`
	} `json:"currencies"`
	Item struct {
		Attributes []json.RawMessage `json:"attributes"`
	} `json:"item"`
}

type classifiedsDocument struct {
	Buy struct {
		Listings []classifiedListingDTO `json:"listings"`
	} `json:"buy"`
	Sell struct {
		Listings []classifiedListingDTO `json:"listings"`
	} `json:"sell"`
}

func fromClassifiedDTOs(dtos []classifiedListingDTO) []ClassifiedListing {
	out := make([]ClassifiedListing, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, ClassifiedListing{
			AccountID: dto.SteamID,
			Price: Price{
				Keys:    int(dto.Currencies.Keys),
				Refined: int(math.Round(dto.Currencies.Metal)),
			},
			HasEffect: len(dto.Item.Attributes) > 0,
		})
	}
	return out
}

// ParseClassifieds decodes a raw classifieds search document.
func ParseClassifieds(raw []byte) (*Classifieds, error) {
	var doc classifiedsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("economy: parse classifieds: %w", err)
	}
	return &Classifieds{
		Buy:  fromClassifiedDTOs(doc.Buy.Listings),
		Sell: fromClassifiedDTOs(doc.Sell.Listings),
	}, nil
}

func dropListings(listings []ClassifiedListing, drop func(ClassifiedListing) bool) []ClassifiedListing {
	out := listings[:0]
	for _, l := range listings {
		if !drop(l) {
			out = append(out, l)
		}
	}
	return out
}

// RemoveFromAccount drops listings owned by the given account, preserving
// order. Pricing strategies call this so the bot's own listings never feed
// back into its prices.
func (c *Classifieds) RemoveFromAccount(accountID string) {
	c.Buy = dropListings(c.Buy, func(l ClassifiedListing) bool { return l.AccountID == accountID })
	c.Sell = dropListings(c.Sell, func(l ClassifiedListing) bool { return l.AccountID == accountID })
}

// RemoveWithoutEffect drops listings that do not name a concrete particle
// effect, preserving order.
func (c *Classifieds) RemoveWithoutEffect() {
	c.Buy = dropListings(c.Buy, func(l ClassifiedListing) bool { return !l.HasEffect })
	c.Sell = dropListings(c.Sell, func(l ClassifiedListing) bool { return !l.HasEffect })
}
