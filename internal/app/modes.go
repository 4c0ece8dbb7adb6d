package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/feed"
	"github.com/unusualtrade/hatbot/internal/pipeline"
	"github.com/unusualtrade/hatbot/internal/server"
	"github.com/unusualtrade/hatbot/internal/server/handler"
)

// serverShutdownTimeout bounds how long in-flight admin requests may run
// after the pipeline stops.
const serverShutdownTimeout = 10 * time.Second

// runMode assembles the pipeline for the given mode and runs it alongside the
// admin server until the context is cancelled.
func (a *App) runMode(ctx context.Context, mode string, deps *Dependencies) error {
	cycle := a.buildCycle(deps)

	var offerFeed *feed.OfferFeed
	if mode == pipeline.ModeTrade {
		processor := pipeline.NewOfferProcessor(
			deps.Bot,
			deps.Steam,
			deps.Store,
			deps.Journal,
			deps.Notifier,
			economy.EvalOptions{
				Forgiveness: a.cfg.Bot.Forgiveness,
				CanHold:     a.cfg.Bot.CanHold,
				Owners:      a.cfg.Bot.OwnerIDs,
			},
			a.cfg.Bot.DefaultPurchaseRatio,
			a.logger,
		)
		offerFeed = feed.NewOfferFeed(a.cfg.Pipeline.OfferFeedURL, processor.HandleOffer, a.logger)
	}

	orchestrator := pipeline.NewOrchestrator(
		cycle,
		offerFeed,
		deps.Archiver,
		mode,
		a.cfg.Pipeline.CycleInterval.Duration,
		a.cfg.Pipeline.ArchiveCron,
		a.logger,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return orchestrator.Run(ctx)
	})

	if a.cfg.Server.Enabled && mode != pipeline.ModeOnce {
		srv := a.buildServer(mode, deps, cycle)
		g.Go(func() error {
			return srv.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

// buildCycle assembles the trading cycle runner, throttling classifieds
// searches through the shared rate limiter when one is configured.
func (a *App) buildCycle(deps *Dependencies) *pipeline.CycleRunner {
	market := pipeline.NewThrottledMarket(
		deps.Backpack,
		deps.RateLimiter,
		a.cfg.Pipeline.SearchRateLimit,
		a.cfg.Pipeline.SearchRateWindow.Duration,
	)
	return pipeline.NewCycleRunner(
		deps.Bot,
		deps.Backpack,
		market,
		deps.Steam,
		deps.Backpack,
		deps.Store,
		a.cfg.Bot.DefaultPurchaseRatio,
		a.logger,
	)
}

// buildServer assembles the admin HTTP server over the bot and cycle runner.
func (a *App) buildServer(mode string, deps *Dependencies, cycle *pipeline.CycleRunner) *server.Server {
	return server.NewServer(
		server.Config{
			Port:      a.cfg.Server.Port,
			AuthToken: a.cfg.Server.AuthToken,
		},
		server.Handlers{
			Health:   handler.NewHealthHandler(),
			Status:   handler.NewStatusHandler(mode, time.Now(), deps.Bot),
			Listings: handler.NewListingsHandler(deps.Bot),
			Control:  handler.NewControlHandler(cycle, a.logger),
		},
		a.logger,
	)
}
