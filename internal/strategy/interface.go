// Package strategy holds the pluggable pricing, acceptability, ratio, and
// description functions the bot is assembled from, plus the registry that
// builds them from configuration tags.
package strategy

import (
	"context"
	"fmt"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// MarketSource is the market-data dependency pricing functions call into.
// Implementations may cache or rate-limit; pricers treat every call as a
// network round trip and propagate its errors.
type MarketSource interface {
	ClassifiedsForItem(ctx context.Context, item economy.Item) (*economy.Classifieds, error)
}

// SellPricer prices an item the bot owns.
type SellPricer func(ctx context.Context, listing *economy.SellListing, src MarketSource, keyScrapRatio int) (economy.Price, error)

// BuyPricer prices a standing buy listing.
type BuyPricer func(ctx context.Context, listing *economy.BuyListing, src MarketSource, keyScrapRatio int) (economy.Price, error)

// Acceptability decides whether a catalog entry should get a buy listing.
// Every built-in implementation rejects entries in unsupported currencies
// before any other check.
type Acceptability func(entry economy.CatalogEntry, name string, effect economy.Effect, keyScrapRatio int) bool

// RatioFunc derives the key-to-scrap ratio from a catalog snapshot.
type RatioFunc func(catalog *economy.Catalog) (int, error)

// DescriptionFunc renders the public description for a visible listing. It
// fails with ErrNotVisible for unpriced listings.
type DescriptionFunc func(listing economy.Listing) (string, error)

// Suite bundles one function of each kind. The bot binds to exactly one
// Suite for its lifetime.
type Suite struct {
	SellPricer    SellPricer
	BuyPricer     BuyPricer
	Acceptability Acceptability
	Ratio         RatioFunc
	Description   DescriptionFunc
}

// Validate reports the first missing function.
func (s *Suite) Validate() error {
	switch {
	case s.SellPricer == nil:
		return fmt.Errorf("strategy: suite missing sell pricer")
	case s.BuyPricer == nil:
		return fmt.Errorf("strategy: suite missing buy pricer")
	case s.Acceptability == nil:
		return fmt.Errorf("strategy: suite missing acceptability function")
	case s.Ratio == nil:
		return fmt.Errorf("strategy: suite missing ratio function")
	case s.Description == nil:
		return fmt.Errorf("strategy: suite missing description function")
	}
	return nil
}
