package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/unusualtrade/hatbot/internal/bot"
	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/strategy"
)

// SnapshotStore persists the bot state between runs.
type SnapshotStore interface {
	Save(snap *bot.Snapshot) error
}

// CycleRunner drives one full trading cycle: refresh the catalog, reconcile
// asset IDs against the live inventory, reprice every listing, and push the
// visible listings to the marketplace. The bot state is persisted after each
// mutating step so a crash never loses more than one step of work.
type CycleRunner struct {
	bot       *bot.TradingBot
	catalog   bot.CatalogSource
	market    strategy.MarketSource
	inventory bot.InventorySource
	publisher bot.Publisher
	store     SnapshotStore

	defaultRatio float64
	logger       *slog.Logger
}

// NewCycleRunner assembles a CycleRunner. The market source should already be
// rate limited if the marketplace requires it (see ThrottledMarket).
func NewCycleRunner(
	b *bot.TradingBot,
	catalog bot.CatalogSource,
	market strategy.MarketSource,
	inventory bot.InventorySource,
	publisher bot.Publisher,
	store SnapshotStore,
	defaultRatio float64,
	logger *slog.Logger,
) *CycleRunner {
	return &CycleRunner{
		bot:          b,
		catalog:      catalog,
		market:       market,
		inventory:    inventory,
		publisher:    publisher,
		store:        store,
		defaultRatio: defaultRatio,
		logger:       logger.With(slog.String("component", "cycle")),
	}
}

// Cycle executes a single full trading cycle. Individual step failures are
// logged and the cycle moves on: a marketplace hiccup during repricing must
// not stop the listings that did reprice from being published.
func (c *CycleRunner) Cycle(ctx context.Context) error {
	start := time.Now()
	c.logger.Info("trading cycle starting")

	if err := c.Refresh(ctx); err != nil {
		c.logger.Error("catalog refresh failed", slog.String("error", err.Error()))
	}
	if err := c.bot.ReconcileAssetIDs(ctx, c.inventory); err != nil {
		c.logger.Error("asset ID reconcile failed", slog.String("error", err.Error()))
	}
	if err := c.Save(ctx); err != nil {
		c.logger.Error("state save failed", slog.String("error", err.Error()))
	}
	if err := c.Recalculate(ctx); err != nil {
		c.logger.Error("repricing failed", slog.String("error", err.Error()))
	}
	if err := c.Save(ctx); err != nil {
		c.logger.Error("state save failed", slog.String("error", err.Error()))
	}
	if err := c.bot.PublishListings(ctx, c.publisher); err != nil {
		c.logger.Error("publish failed", slog.String("error", err.Error()))
	}

	c.logger.Info("trading cycle finished",
		slog.Duration("took", time.Since(start)),
	)
	return ctx.Err()
}

// RunLoop runs a cycle immediately and then on every tick of interval until
// the context is cancelled.
func (c *CycleRunner) RunLoop(ctx context.Context, interval time.Duration) error {
	if err := c.Cycle(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("trading cycle loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := c.Cycle(ctx); err != nil {
				return err
			}
		}
	}
}

// Refresh refreshes the catalog and rebuilds the buy-listing set.
func (c *CycleRunner) Refresh(ctx context.Context) error {
	return c.bot.UpdateAndFilter(ctx, c.catalog)
}

// Recalculate reprices every listing. Per-item failures are logged and leave
// that listing's price unchanged.
func (c *CycleRunner) Recalculate(ctx context.Context) error {
	return c.bot.RecalculatePrices(ctx, c.market, func(item economy.Item, err error) {
		c.logger.Warn("listing not repriced",
			slog.String("item", item.String()),
			slog.String("error", err.Error()),
		)
	})
}

// Save persists the current bot state.
func (c *CycleRunner) Save(ctx context.Context) error {
	return c.store.Save(c.bot.Snapshot())
}

// ReadInventory rebuilds the sell side from the live inventory.
func (c *CycleRunner) ReadInventory(ctx context.Context) error {
	return c.bot.ReadInventory(ctx, c.inventory, c.defaultRatio)
}
