// Package bot holds the trading bot core: the listing collections, the
// current catalog and key-to-scrap ratio, and the operations that mutate
// them. One mutex spans every operation, so each observes and produces a
// consistent state; callers only ever see deep copies.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/strategy"
)

// CatalogSource fetches the community price catalog.
type CatalogSource interface {
	GetCatalog(ctx context.Context) (*economy.Catalog, error)
}

// InventorySource fetches a marketplace inventory.
type InventorySource interface {
	GetInventory(ctx context.Context, accountID string) ([]economy.InventoryItem, error)
}

// Publisher pushes visible listings to the marketplace.
type Publisher interface {
	PublishListings(ctx context.Context, listings []economy.Listing, describe strategy.DescriptionFunc) error
}

// TradingBot tracks the hats the bot owns (sell side), the hats it wants
// (buy side), and the market data both are priced against.
type TradingBot struct {
	accountID string
	suite     *strategy.Suite
	logger    *slog.Logger

	mu      sync.Mutex
	sells   *economy.Collection
	buys    *economy.Collection
	catalog *economy.Catalog
	ratio   int
}

// New returns a TradingBot with empty collections. It holds no market data
// until the first UpdateAndFilter.
func New(accountID string, suite *strategy.Suite, logger *slog.Logger) (*TradingBot, error) {
	if accountID == "" {
		return nil, fmt.Errorf("bot: empty account ID: %w", economy.ErrInvalidArgument)
	}
	if suite == nil {
		return nil, fmt.Errorf("bot: nil strategy suite: %w", economy.ErrInvalidArgument)
	}
	if err := suite.Validate(); err != nil {
		return nil, err
	}
	return &TradingBot{
		accountID: accountID,
		suite:     suite,
		logger:    logger.With(slog.String("component", "bot")),
		sells:     economy.NewCollection(),
		buys:      economy.NewCollection(),
	}, nil
}

// AccountID returns the bot's marketplace account ID.
func (b *TradingBot) AccountID() string { return b.accountID }

// KeyScrapRatio returns the ratio from the last catalog refresh, zero before
// the first one.
func (b *TradingBot) KeyScrapRatio() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ratio
}

// Sells returns a deep copy of the sell-side collection.
func (b *TradingBot) Sells() *economy.Collection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sells.Copy()
}

// Buys returns a deep copy of the buy-side collection.
func (b *TradingBot) Buys() *economy.Collection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buys.Copy()
}

// Stats is a point-in-time summary for status reporting.
type Stats struct {
	SellListings  int  `json:"sell_listings"`
	VisibleSells  int  `json:"visible_sells"`
	BuyListings   int  `json:"buy_listings"`
	VisibleBuys   int  `json:"visible_buys"`
	KeyScrapRatio int  `json:"key_scrap_ratio"`
	CatalogLoaded bool `json:"catalog_loaded"`
}

// Stats returns a consistent summary of the bot's state.
func (b *TradingBot) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		SellListings:  b.sells.Len(),
		VisibleSells:  len(b.sells.Visible()),
		BuyListings:   b.buys.Len(),
		VisibleBuys:   len(b.buys.Visible()),
		KeyScrapRatio: b.ratio,
		CatalogLoaded: b.catalog != nil,
	}
}

// communityRange resolves an item's community price range from a catalog,
// or fails when the item is unpriced or priced in an unsupported currency.
func communityRange(catalog *economy.Catalog, item economy.Item, ratio int) (economy.PriceRange, error) {
	entry, err := catalog.UnusualEntry(item)
	if err != nil {
		return economy.PriceRange{}, err
	}
	return economy.PriceRangeFromEntry(entry, ratio)
}

// UpdateAndFilter refreshes the catalog and the key-to-scrap ratio, updates
// the community price on every listing, creates buy listings for every
// acceptable catalog entry, and prunes buy listings that are unpriced, no
// longer acceptable, or already owned.
//
// Listings whose catalog entry is missing or unsupported keep their stale
// community price on the sell side; on the buy side they are pruned.
func (b *TradingBot) UpdateAndFilter(ctx context.Context, src CatalogSource) error {
	catalog, err := src.GetCatalog(ctx)
	if err != nil {
		return fmt.Errorf("bot: refresh catalog: %w", err)
	}
	ratio, err := b.suite.Ratio(catalog)
	if err != nil {
		return fmt.Errorf("bot: derive key-to-scrap ratio: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalog = catalog
	b.ratio = ratio

	for _, l := range b.sells.All() {
		if r, err := communityRange(catalog, l.Item(), ratio); err == nil {
			l.SetCommunityPrice(r)
		}
	}
	for _, l := range b.buys.All() {
		if r, err := communityRange(catalog, l.Item(), ratio); err == nil {
			l.SetCommunityPrice(r)
		}
	}

	added := 0
	catalog.ForEachUnusual(func(entry economy.CatalogEntry, name string, effect economy.Effect) {
		if !b.suite.Acceptability(entry, name, effect, ratio) {
			return
		}
		item, err := economy.NewItem(name, economy.QualityUnusual, effect)
		if err != nil {
			return
		}
		if _, ok := b.buys.Get(item); ok {
			// Keep the existing listing and its price.
			return
		}
		r, err := economy.PriceRangeFromEntry(entry, ratio)
		if err != nil {
			return
		}
		listing, err := economy.NewBuyListing(item, r)
		if err != nil {
			return
		}
		b.buys.Upsert(listing)
		added++
	})

	pruned := 0
	for _, l := range b.buys.All() {
		item := l.Item()
		entry, err := b.catalog.UnusualEntry(item)
		if err != nil {
			b.buys.Remove(item)
			pruned++
			continue
		}
		if _, owned := b.sells.Get(item); owned {
			b.buys.Remove(item)
			pruned++
			continue
		}
		if !b.suite.Acceptability(entry, item.Name, item.Effect(), ratio) {
			b.buys.Remove(item)
			pruned++
		}
	}

	b.logger.Info("catalog refreshed",
		slog.Int("key_scrap_ratio", ratio),
		slog.Int("buy_listings_added", added),
		slog.Int("buy_listings_pruned", pruned),
	)
	return nil
}

// RecalculatePrices reprices every listing on both sides. The market call
// for each item runs without the bot lock; only the write-back is locked, so
// offers keep being evaluated during a long repricing pass. A failed item
// keeps its previous price and is reported through onError; the pass
// continues.
func (b *TradingBot) RecalculatePrices(ctx context.Context, src strategy.MarketSource, onError func(item economy.Item, err error)) error {
	b.mu.Lock()
	ratio := b.ratio
	sells := b.sells.Copy().All()
	buys := b.buys.Copy().All()
	b.mu.Unlock()

	if ratio <= 0 {
		return fmt.Errorf("bot: recalculate before first catalog refresh: %w", economy.ErrInvalidArgument)
	}

	report := func(item economy.Item, err error) {
		if onError != nil {
			onError(item, err)
		}
	}

	for _, l := range sells {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := l.(*economy.SellListing)
		price, err := b.suite.SellPricer(ctx, s, src, ratio)
		if err != nil {
			report(s.Item(), err)
			continue
		}
		b.setPrice(b.sells, s.Item(), price)
	}
	for _, l := range buys {
		if err := ctx.Err(); err != nil {
			return err
		}
		bl := l.(*economy.BuyListing)
		price, err := b.suite.BuyPricer(ctx, bl, src, ratio)
		if err != nil {
			report(bl.Item(), err)
			continue
		}
		b.setPrice(b.buys, bl.Item(), price)
	}
	return nil
}

// setPrice writes a freshly calculated price back to the live listing, if it
// still exists.
func (b *TradingBot) setPrice(col *economy.Collection, item economy.Item, price economy.Price) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l, ok := col.Get(item); ok {
		l.SetPrice(&price)
	}
}

// EvaluateOffer classifies a trade proposal against the bot's current
// prices. The evaluation works on deep copies, so the caller may hold the
// result while the bot keeps mutating.
func (b *TradingBot) EvaluateOffer(offer economy.Offer, opts economy.EvalOptions) (*economy.TradeOffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ratio <= 0 {
		return nil, fmt.Errorf("bot: evaluate before first catalog refresh: %w", economy.ErrInvalidArgument)
	}
	return economy.EvaluateOffer(offer, b.sells.Copy(), b.buys.Copy(), b.ratio, opts)
}

// ApplyOffer resolves the consequences of an accepted offer: received
// unusual items become sell listings (promoting their buy listing when one
// is visible, otherwise falling back to defaultRatio of the community
// middle as the purchase price) and consumed buy listings and given-away
// sell listings are removed. Non-accepted offers are a no-op.
//
// New sell listings start without an asset ID; the marketplace assigns a
// fresh ID on transfer, so IDs attach on the next reconciliation.
func (b *TradingBot) ApplyOffer(result *economy.TradeOffer, defaultRatio float64) error {
	if result == nil {
		return fmt.Errorf("bot: apply nil offer: %w", economy.ErrInvalidArgument)
	}
	if defaultRatio < 0 || defaultRatio > 1 {
		return fmt.Errorf("bot: default purchase ratio %v: %w", defaultRatio, economy.ErrInvalidArgument)
	}
	if result.Response != economy.ResponseAccept {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.catalog == nil {
		return fmt.Errorf("bot: apply offer before first catalog refresh: %w", economy.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	for _, item := range result.ToReceive {
		if item.Quality != economy.QualityUnusual || economy.ExcludedUnusualName(item.Name) {
			continue
		}

		var promoted *economy.SellListing
		if l, ok := b.buys.Get(item.Item); ok {
			if s, err := economy.SellListingFromBuy(l.(*economy.BuyListing), now); err == nil {
				promoted = s
			}
		}
		if promoted == nil {
			r, err := communityRange(b.catalog, item.Item, b.ratio)
			if err != nil {
				b.logger.Warn("received hat has no usable catalog entry",
					slog.String("item", item.Item.String()),
					slog.String("error", err.Error()),
				)
				b.buys.Remove(item.Item)
				continue
			}
			purchase, err := r.Middle.ScaleBy(defaultRatio, b.ratio)
			if err != nil {
				return err
			}
			s, err := economy.NewSellListing(item.Item, r, purchase, now, "")
			if err != nil {
				return err
			}
			promoted = s
		}
		b.sells.Upsert(promoted)
		b.buys.Remove(item.Item)
	}

	for _, item := range result.ToGive {
		if item.Quality == economy.QualityUnusual {
			b.sells.Remove(item.Item)
		}
	}
	return nil
}

// ReconcileAssetIDs attaches inventory asset IDs to sell listings that are
// missing one, making them eligible for publishing.
func (b *TradingBot) ReconcileAssetIDs(ctx context.Context, inv InventorySource) error {
	items, err := inv.GetInventory(ctx, b.accountID)
	if err != nil {
		return fmt.Errorf("bot: reconcile asset IDs: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, item := range items {
		if item.Quality != economy.QualityUnusual {
			continue
		}
		if l, ok := b.sells.Get(item.Item); ok {
			l.(*economy.SellListing).SetAssetID(item.AssetID)
		}
	}
	return nil
}

// ReadInventory rebuilds the sell side from a live inventory snapshot: known
// hats get their asset ID refreshed, unknown hats are added with defaultRatio
// of the community middle as the purchase price and today as the acquisition
// date, and hats no longer in the inventory are dropped. Tracking drift
// accumulates from missed offers; this resets it.
func (b *TradingBot) ReadInventory(ctx context.Context, inv InventorySource, defaultRatio float64) error {
	if defaultRatio < 0 || defaultRatio > 1 {
		return fmt.Errorf("bot: default purchase ratio %v: %w", defaultRatio, economy.ErrInvalidArgument)
	}
	items, err := inv.GetInventory(ctx, b.accountID)
	if err != nil {
		return fmt.Errorf("bot: read inventory: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.catalog == nil {
		return fmt.Errorf("bot: read inventory before first catalog refresh: %w", economy.ErrInvalidArgument)
	}

	seen := make(map[economy.Item]bool, b.sells.Len())
	now := time.Now().UTC()
	for _, item := range items {
		if item.Quality != economy.QualityUnusual || economy.ExcludedUnusualName(item.Name) {
			continue
		}
		if l, ok := b.sells.Get(item.Item); ok {
			l.(*economy.SellListing).SetAssetID(item.AssetID)
			seen[item.Item] = true
			continue
		}
		r, err := communityRange(b.catalog, item.Item, b.ratio)
		if err != nil {
			b.logger.Warn("inventory hat has no usable catalog entry",
				slog.String("item", item.Item.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		purchase, err := r.Middle.ScaleBy(defaultRatio, b.ratio)
		if err != nil {
			return err
		}
		s, err := economy.NewSellListing(item.Item, r, purchase, now, item.AssetID)
		if err != nil {
			return err
		}
		b.sells.Upsert(s)
		b.buys.Remove(item.Item)
		seen[item.Item] = true
	}

	for _, l := range b.sells.All() {
		if !seen[l.Item()] {
			b.sells.Remove(l.Item())
		}
	}
	return nil
}

// PublishListings pushes every visible listing on both sides through the
// publisher, described by the suite's description function.
func (b *TradingBot) PublishListings(ctx context.Context, pub Publisher) error {
	b.mu.Lock()
	listings := append(b.sells.Copy().Visible(), b.buys.Copy().Visible()...)
	b.mu.Unlock()

	if len(listings) == 0 {
		return nil
	}
	if err := pub.PublishListings(ctx, listings, b.suite.Description); err != nil {
		return fmt.Errorf("bot: publish listings: %w", err)
	}
	b.logger.Info("listings published", slog.Int("count", len(listings)))
	return nil
}
