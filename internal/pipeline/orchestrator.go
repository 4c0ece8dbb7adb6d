// Package pipeline coordinates the bot's long-running work: the periodic
// trading cycle, the incoming offer stream, and the offer-record archive.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unusualtrade/hatbot/internal/feed"
)

// Run modes. "trade" runs everything, "price" skips the offer stream, and
// "once" runs a single trading cycle and exits.
const (
	ModeTrade = "trade"
	ModePrice = "price"
	ModeOnce  = "once"
)

// Orchestrator manages all pipeline goroutines: the trading cycle loop, the
// offer feed, and the archive cron.
type Orchestrator struct {
	cycle         *CycleRunner
	offerFeed     *feed.OfferFeed
	archiver      *Archiver
	mode          string
	cycleInterval time.Duration
	archiveCron   string
	logger        *slog.Logger
}

// NewOrchestrator creates a new Orchestrator. The offer feed may be nil when
// the mode does not consume offers; the archiver may be nil when no archive
// destination is configured.
func NewOrchestrator(
	cycle *CycleRunner,
	offerFeed *feed.OfferFeed,
	archiver *Archiver,
	mode string,
	cycleInterval time.Duration,
	archiveCron string,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cycle:         cycle,
		offerFeed:     offerFeed,
		archiver:      archiver,
		mode:          mode,
		cycleInterval: cycleInterval,
		archiveCron:   archiveCron,
		logger:        logger.With(slog.String("component", "pipeline")),
	}
}

// Run starts the pipelines for the configured mode as concurrent goroutines
// using an errgroup. Each goroutine respects ctx cancellation. If any
// goroutine returns a non-context error, the errgroup cancels the shared
// context and Run returns that error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline starting",
		slog.String("mode", o.mode),
		slog.Duration("cycle_interval", o.cycleInterval),
	)

	if o.mode == ModeOnce {
		if err := o.cycle.Cycle(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("trading cycle: %w", err)
		}
		o.logger.Info("single cycle finished")
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)

	// 1. Trading cycle on ticker.
	g.Go(func() error {
		o.logger.Info("starting trading cycle loop")
		err := o.cycle.RunLoop(ctx, o.cycleInterval)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("trading cycle: %w", err)
	})

	// 2. Offer feed, trade mode only.
	if o.mode == ModeTrade && o.offerFeed != nil {
		g.Go(func() error {
			o.logger.Info("starting offer feed")
			err := o.offerFeed.Run(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("offer feed: %w", err)
		})
	}

	// 3. Archiver on cron schedule.
	if o.archiver != nil {
		g.Go(func() error {
			o.logger.Info("starting archiver cron")
			err := o.archiver.RunCron(ctx, o.archiveCron)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archiver: %w", err)
		})
	}

	err := g.Wait()
	if err != nil {
		o.logger.Error("pipeline stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("pipeline stopped cleanly")
	return nil
}
