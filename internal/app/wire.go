package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/unusualtrade/hatbot/internal/blob"
	"github.com/unusualtrade/hatbot/internal/blob/local"
	s3blob "github.com/unusualtrade/hatbot/internal/blob/s3"
	"github.com/unusualtrade/hatbot/internal/bot"
	"github.com/unusualtrade/hatbot/internal/cache/redis"
	"github.com/unusualtrade/hatbot/internal/config"
	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/notify"
	"github.com/unusualtrade/hatbot/internal/pipeline"
	"github.com/unusualtrade/hatbot/internal/platform/backpack"
	"github.com/unusualtrade/hatbot/internal/platform/steam"
	"github.com/unusualtrade/hatbot/internal/records"
	"github.com/unusualtrade/hatbot/internal/store/file"
	"github.com/unusualtrade/hatbot/internal/strategy"
)

// Dependencies bundles everything the application needs to run: the bot and
// its strategy suite, the platform clients, persistence, and the optional
// rate limiter, archiver, and notifier. It is constructed by Wire and torn
// down by the returned cleanup function.
type Dependencies struct {
	Bot      *bot.TradingBot
	Backpack *backpack.Client
	Steam    *steam.Client
	Store    *file.Store
	Journal  *records.Journal

	// RateLimiter is nil when no Redis address is configured; classifieds
	// searches then run unthrottled.
	RateLimiter pipeline.Waiter
	Archiver    *pipeline.Archiver
	Notifier    *notify.Notifier
}

// suiteConfig converts the TOML strategy section into the registry's form.
func suiteConfig(cfg config.StrategyConfig) strategy.SuiteConfig {
	fn := func(c config.FunctionConfig) strategy.FunctionConfig {
		return strategy.FunctionConfig{Tag: c.Tag, Params: strategy.Params(c.Params)}
	}
	return strategy.SuiteConfig{
		SellPricer:    fn(cfg.SellPricer),
		BuyPricer:     fn(cfg.BuyPricer),
		Acceptability: fn(cfg.Acceptability),
		Ratio:         fn(cfg.Ratio),
		Description:   fn(cfg.Description),
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{Journal: records.NewJournal()}

	// --- Strategy suite ---
	registry := strategy.NewRegistry(cfg.Bot.AccountID)
	suite, err := registry.BuildSuite(suiteConfig(cfg.Strategy))
	if err != nil {
		return nil, nil, fmt.Errorf("wire: strategy suite: %w", err)
	}

	// --- Bot + persisted state ---
	deps.Bot, err = bot.New(cfg.Bot.AccountID, suite, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: bot: %w", err)
	}
	deps.Store, err = file.NewStore(cfg.Bot.SnapshotPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: snapshot store: %w", err)
	}
	snap, err := deps.Store.Load()
	switch {
	case err == nil:
		if err := deps.Bot.Restore(snap); err != nil {
			return nil, nil, fmt.Errorf("wire: restore snapshot: %w", err)
		}
		logger.Info("bot state restored",
			slog.String("path", deps.Store.Path()),
			slog.Int("hats", len(snap.Hats)),
			slog.Int("buy_listings", len(snap.Buys)),
		)
	case errors.Is(err, economy.ErrNotFound):
		logger.Info("no saved bot state, starting fresh",
			slog.String("path", deps.Store.Path()),
		)
	default:
		return nil, nil, fmt.Errorf("wire: load snapshot: %w", err)
	}

	// --- Platform clients ---
	deps.Backpack = backpack.NewClient(
		cfg.Backpack.BaseURL,
		cfg.Backpack.APIKey,
		cfg.Backpack.Token,
		cfg.Backpack.SearchTTL.Duration,
		logger,
	)
	deps.Steam = steam.NewClient(cfg.Steam.BaseURL, logger)

	// --- Redis rate limiter (optional) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- Offer-record archive: S3 when enabled, local directory otherwise ---
	writer, err := buildBlobWriter(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Archiver = pipeline.NewArchiver(
		s3blob.NewArchiver(writer, deps.Journal, logger),
		logger,
	)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	return deps, cleanup, nil
}

func buildBlobWriter(ctx context.Context, cfg *config.Config) (blob.Writer, error) {
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("wire: s3: %w", err)
		}
		if err := s3Client.Health(ctx); err != nil {
			return nil, fmt.Errorf("wire: s3: %w", err)
		}
		return s3blob.NewWriter(s3Client), nil
	}

	w, err := local.NewWriter(cfg.Pipeline.ArchiveDir)
	if err != nil {
		return nil, fmt.Errorf("wire: archive dir: %w", err)
	}
	return w, nil
}
