// Package config defines the top-level configuration for the hat trading bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by HATBOT_* environment variables.
type Config struct {
	Bot      BotConfig      `toml:"bot"`
	Backpack BackpackConfig `toml:"backpack"`
	Steam    SteamConfig    `toml:"steam"`
	Strategy StrategyConfig `toml:"strategy"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// BotConfig holds the trading identity and offer-evaluation parameters.
type BotConfig struct {
	// AccountID is the bot's marketplace account ID. Market-relative pricers
	// use it to skip the bot's own classifieds listings.
	AccountID string `toml:"account_id"`
	// OwnerIDs are partner account IDs whose offers are always accepted.
	OwnerIDs []string `toml:"owner_ids"`
	// Forgiveness in [0,1] scales down the bot's side when comparing offer
	// totals, so slightly unfavorable offers still go through.
	Forgiveness float64 `toml:"forgiveness"`
	// CanHold permits the Hold classification for offers that cannot be
	// fully valued; when false such offers are declined.
	CanHold bool `toml:"can_hold"`
	// DefaultPurchaseRatio prices hats that arrive without a buy listing
	// (community middle scaled by this ratio).
	DefaultPurchaseRatio float64 `toml:"default_purchase_ratio"`
	// SnapshotPath is the JSON file the bot state is persisted to.
	SnapshotPath string `toml:"snapshot_path"`
}

// BackpackConfig holds marketplace API endpoints and credentials.
type BackpackConfig struct {
	BaseURL   string   `toml:"base_url"`
	APIKey    string   `toml:"api_key"`
	Token     string   `toml:"token"`
	SearchTTL duration `toml:"search_ttl"`
}

// SteamConfig holds the inventory API endpoint.
type SteamConfig struct {
	BaseURL string `toml:"base_url"`
}

// FunctionConfig selects one registered strategy function by tag and carries
// its parameters.
type FunctionConfig struct {
	Tag    string         `toml:"tag"`
	Params map[string]any `toml:"params"`
}

// StrategyConfig selects the five functions the trading suite is assembled
// from. Unknown tags are rejected when the suite is built, not here.
type StrategyConfig struct {
	SellPricer    FunctionConfig `toml:"sell_pricer"`
	BuyPricer     FunctionConfig `toml:"buy_pricer"`
	Acceptability FunctionConfig `toml:"acceptability"`
	Ratio         FunctionConfig `toml:"ratio"`
	Description   FunctionConfig `toml:"description"`
}

// PipelineConfig holds the trading-cycle and offer-feed parameters.
type PipelineConfig struct {
	CycleInterval duration `toml:"cycle_interval"`
	// SearchRateLimit caps classifieds searches per SearchRateWindow during
	// a repricing pass. Zero disables rate limiting.
	SearchRateLimit  int      `toml:"search_rate_limit"`
	SearchRateWindow duration `toml:"search_rate_window"`
	OfferFeedURL     string   `toml:"offer_feed_url"`
	ArchiveCron      string   `toml:"archive_cron"`
	ArchiveDir       string   `toml:"archive_dir"`
}

// RedisConfig holds Redis connection parameters. An empty Addr disables the
// shared rate limiter.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the offer-record
// archive. When disabled, records are archived to Pipeline.ArchiveDir.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds admin HTTP server parameters.
type ServerConfig struct {
	Enabled   bool   `toml:"enabled"`
	Port      int    `toml:"port"`
	AuthToken string `toml:"auth_token"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Bot: BotConfig{
			Forgiveness:          0.0,
			CanHold:              true,
			DefaultPurchaseRatio: 0.9,
			SnapshotPath:         "data/bot.json",
		},
		Backpack: BackpackConfig{
			BaseURL:   "https://backpack.tf",
			SearchTTL: duration{90 * time.Second},
		},
		Steam: SteamConfig{
			BaseURL: "https://steamcommunity.com",
		},
		Strategy: StrategyConfig{
			SellPricer: FunctionConfig{
				Tag:    "undercut_by_market",
				Params: map[string]any{},
			},
			BuyPricer: FunctionConfig{
				Tag:    "overcut_by_market",
				Params: map[string]any{},
			},
			Acceptability: FunctionConfig{
				Tag:    "check_data",
				Params: map[string]any{},
			},
			Ratio: FunctionConfig{
				Tag:    "from_catalog",
				Params: map[string]any{},
			},
			Description: FunctionConfig{
				Tag:    "simple",
				Params: map[string]any{},
			},
		},
		Pipeline: PipelineConfig{
			CycleInterval:    duration{15 * time.Minute},
			SearchRateLimit:  10,
			SearchRateWindow: duration{time.Minute},
			ArchiveCron:      "0 3 * * *",
			ArchiveDir:       "data/archive",
		},
		Redis: RedisConfig{
			Addr:       "",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "hatbot-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8000,
		},
		Notify: NotifyConfig{
			Events: []string{"offer_accepted", "offer_held", "offer_declined"},
		},
		Mode:     "trade",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"trade": true,
	"price": true,
	"once":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: trade, price, once)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Bot
	if c.Bot.AccountID == "" {
		errs = append(errs, "bot: account_id must be set")
	}
	if c.Bot.Forgiveness < 0 || c.Bot.Forgiveness > 1 {
		errs = append(errs, fmt.Sprintf("bot: forgiveness %v must be in [0,1]", c.Bot.Forgiveness))
	}
	if c.Bot.DefaultPurchaseRatio <= 0 {
		errs = append(errs, fmt.Sprintf("bot: default_purchase_ratio %v must be positive", c.Bot.DefaultPurchaseRatio))
	}
	if c.Bot.SnapshotPath == "" {
		errs = append(errs, "bot: snapshot_path must be set")
	}

	// Backpack
	if c.Backpack.BaseURL == "" {
		errs = append(errs, "backpack: base_url must be set")
	}
	if c.Backpack.APIKey == "" {
		errs = append(errs, "backpack: api_key must be set")
	}
	if c.Backpack.Token == "" {
		errs = append(errs, "backpack: token must be set")
	}
	if c.Backpack.SearchTTL.Duration < 0 {
		errs = append(errs, "backpack: search_ttl must not be negative")
	}

	// Steam
	if c.Steam.BaseURL == "" {
		errs = append(errs, "steam: base_url must be set")
	}

	// Strategy: tags must be chosen; the registry rejects unknown ones.
	for _, fn := range []struct {
		name string
		cfg  FunctionConfig
	}{
		{"sell_pricer", c.Strategy.SellPricer},
		{"buy_pricer", c.Strategy.BuyPricer},
		{"acceptability", c.Strategy.Acceptability},
		{"ratio", c.Strategy.Ratio},
		{"description", c.Strategy.Description},
	} {
		if fn.cfg.Tag == "" {
			errs = append(errs, "strategy: "+fn.name+".tag must be set")
		}
	}

	// Pipeline
	if c.Pipeline.CycleInterval.Duration <= 0 {
		errs = append(errs, "pipeline: cycle_interval must be positive")
	}
	if c.Pipeline.SearchRateLimit < 0 {
		errs = append(errs, "pipeline: search_rate_limit must not be negative")
	}
	if c.Pipeline.SearchRateLimit > 0 && c.Pipeline.SearchRateWindow.Duration <= 0 {
		errs = append(errs, "pipeline: search_rate_window must be positive when search_rate_limit is set")
	}
	if c.Mode == "trade" && c.Pipeline.OfferFeedURL == "" {
		errs = append(errs, "pipeline: offer_feed_url must be set for mode trade")
	}
	if !c.S3.Enabled && c.Pipeline.ArchiveDir == "" {
		errs = append(errs, "pipeline: archive_dir must be set when s3 is disabled")
	}

	// S3 fields are required only when enabled.
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must be set when s3 is enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must be set when s3 is enabled")
		}
	}

	// Server
	if c.Server.Enabled && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
	}

	// Telegram needs both halves of the credential.
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
