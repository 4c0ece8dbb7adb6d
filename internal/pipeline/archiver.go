package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// OfferArchiver flushes journaled offer records to blob storage.
type OfferArchiver interface {
	ArchiveOffers(ctx context.Context, before time.Time) (int64, error)
}

// Archiver moves accumulated offer records from the in-memory journal to
// blob storage on a cron schedule.
type Archiver struct {
	blobArchiver OfferArchiver
	logger       *slog.Logger
}

// NewArchiver creates a new Archiver.
func NewArchiver(blobArchiver OfferArchiver, logger *slog.Logger) *Archiver {
	return &Archiver{
		blobArchiver: blobArchiver,
		logger:       logger.With(slog.String("component", "archiver")),
	}
}

// Run executes a single archive run, flushing every record journaled so far.
func (a *Archiver) Run(ctx context.Context) error {
	cutoff := time.Now().UTC()

	archived, err := a.blobArchiver.ArchiveOffers(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pipeline: archiving offers before %v: %w", cutoff, err)
	}
	if archived > 0 {
		a.logger.Info("archived offer records", slog.Int64("count", archived))
	}
	return nil
}

// RunCron runs the archiver on a standard 5-field cron schedule
// ("minute hour day-of-month month day-of-week") until the context is
// cancelled. Example: "0 3 * * *" runs at 3:00 AM every day.
func (a *Archiver) RunCron(ctx context.Context, cronExpr string) error {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return fmt.Errorf("pipeline: parsing cron expression %q: %w", cronExpr, err)
	}
	a.logger.Info("archiver cron started", slog.String("cron", cronExpr))

	for {
		next := schedule.Next(time.Now().UTC())
		waitDuration := time.Until(next)
		a.logger.Debug("archiver waiting for next cron trigger",
			slog.Time("next_run", next),
			slog.Duration("wait", waitDuration),
		)

		timer := time.NewTimer(waitDuration)
		select {
		case <-ctx.Done():
			timer.Stop()
			a.logger.Info("archiver cron stopped")
			return ctx.Err()
		case <-timer.C:
			if err := a.Run(ctx); err != nil {
				a.logger.Error("archive run failed", slog.String("error", err.Error()))
			}
		}
	}
}
