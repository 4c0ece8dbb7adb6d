package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/unusualtrade/hatbot/internal/bot"
	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/notify"
	"github.com/unusualtrade/hatbot/internal/records"
)

// OfferResponder sends the bot's decision back to the trade relay.
type OfferResponder interface {
	RespondOffer(ctx context.Context, offerID string, response economy.OfferResponse) error
}

// OfferProcessor turns each incoming trade proposal into a decision: evaluate
// it against the bot's listings, respond, apply the accepted exchange to the
// collections, persist, and record the narrative for the audit trail.
type OfferProcessor struct {
	bot       *bot.TradingBot
	responder OfferResponder
	store     SnapshotStore
	journal   *records.Journal
	notifier  *notify.Notifier

	opts         economy.EvalOptions
	defaultRatio float64
	logger       *slog.Logger
}

// NewOfferProcessor assembles an OfferProcessor. The notifier may be nil when
// no notification channels are configured.
func NewOfferProcessor(
	b *bot.TradingBot,
	responder OfferResponder,
	store SnapshotStore,
	journal *records.Journal,
	notifier *notify.Notifier,
	opts economy.EvalOptions,
	defaultRatio float64,
	logger *slog.Logger,
) *OfferProcessor {
	return &OfferProcessor{
		bot:          b,
		responder:    responder,
		store:        store,
		journal:      journal,
		notifier:     notifier,
		opts:         opts,
		defaultRatio: defaultRatio,
		logger:       logger.With(slog.String("component", "offers")),
	}
}

// HandleOffer processes one incoming trade proposal. It matches the offer
// feed's handler signature. The response is sent before the collections are
// touched; if responding fails the offer is left untouched so a retry sees
// the same state.
func (p *OfferProcessor) HandleOffer(ctx context.Context, offerID string, offer economy.Offer) {
	if err := p.process(ctx, offerID, offer); err != nil {
		p.logger.Error("offer processing failed",
			slog.String("offer_id", offerID),
			slog.String("error", err.Error()),
		)
	}
}

func (p *OfferProcessor) process(ctx context.Context, offerID string, offer economy.Offer) error {
	result, err := p.bot.EvaluateOffer(offer, p.opts)
	if err != nil {
		return fmt.Errorf("pipeline: evaluate offer %s: %w", offerID, err)
	}

	p.logger.Info("offer evaluated",
		slog.String("offer_id", offerID),
		slog.String("partner", result.Partner),
		slog.String("response", string(result.Response)),
		slog.Int("our_value", result.OurValue),
		slog.Int("their_value", result.TheirValue),
	)

	if err := p.responder.RespondOffer(ctx, offerID, result.Response); err != nil {
		return fmt.Errorf("pipeline: respond to offer %s: %w", offerID, err)
	}

	if err := p.bot.ApplyOffer(result, p.defaultRatio); err != nil {
		return fmt.Errorf("pipeline: apply offer %s: %w", offerID, err)
	}

	if err := p.store.Save(p.bot.Snapshot()); err != nil {
		p.logger.Error("state save after offer failed",
			slog.String("offer_id", offerID),
			slog.String("error", err.Error()),
		)
	}

	p.journal.Append(records.NewOfferRecord(offerID, result, time.Now().UTC()))

	if p.notifier != nil {
		if err := p.notifier.NotifyOffer(ctx, offerID, result); err != nil {
			p.logger.Warn("offer notification failed",
				slog.String("offer_id", offerID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
