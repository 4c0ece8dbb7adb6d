package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies HATBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known HATBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Bot ──
	setStr(&cfg.Bot.AccountID, "HATBOT_BOT_ACCOUNT_ID")
	setStringSlice(&cfg.Bot.OwnerIDs, "HATBOT_BOT_OWNER_IDS")
	setFloat64(&cfg.Bot.Forgiveness, "HATBOT_BOT_FORGIVENESS")
	setBool(&cfg.Bot.CanHold, "HATBOT_BOT_CAN_HOLD")
	setFloat64(&cfg.Bot.DefaultPurchaseRatio, "HATBOT_BOT_DEFAULT_PURCHASE_RATIO")
	setStr(&cfg.Bot.SnapshotPath, "HATBOT_BOT_SNAPSHOT_PATH")

	// ── Backpack ──
	setStr(&cfg.Backpack.BaseURL, "HATBOT_BACKPACK_BASE_URL")
	setStr(&cfg.Backpack.APIKey, "HATBOT_BACKPACK_API_KEY")
	setStr(&cfg.Backpack.Token, "HATBOT_BACKPACK_TOKEN")
	setDuration(&cfg.Backpack.SearchTTL, "HATBOT_BACKPACK_SEARCH_TTL")

	// ── Steam ──
	setStr(&cfg.Steam.BaseURL, "HATBOT_STEAM_BASE_URL")

	// ── Strategy ── (tags only; params come from the TOML file)
	setStr(&cfg.Strategy.SellPricer.Tag, "HATBOT_STRATEGY_SELL_PRICER")
	setStr(&cfg.Strategy.BuyPricer.Tag, "HATBOT_STRATEGY_BUY_PRICER")
	setStr(&cfg.Strategy.Acceptability.Tag, "HATBOT_STRATEGY_ACCEPTABILITY")
	setStr(&cfg.Strategy.Ratio.Tag, "HATBOT_STRATEGY_RATIO")
	setStr(&cfg.Strategy.Description.Tag, "HATBOT_STRATEGY_DESCRIPTION")

	// ── Pipeline ──
	setDuration(&cfg.Pipeline.CycleInterval, "HATBOT_PIPELINE_CYCLE_INTERVAL")
	setInt(&cfg.Pipeline.SearchRateLimit, "HATBOT_PIPELINE_SEARCH_RATE_LIMIT")
	setDuration(&cfg.Pipeline.SearchRateWindow, "HATBOT_PIPELINE_SEARCH_RATE_WINDOW")
	setStr(&cfg.Pipeline.OfferFeedURL, "HATBOT_PIPELINE_OFFER_FEED_URL")
	setStr(&cfg.Pipeline.ArchiveCron, "HATBOT_PIPELINE_ARCHIVE_CRON")
	setStr(&cfg.Pipeline.ArchiveDir, "HATBOT_PIPELINE_ARCHIVE_DIR")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "HATBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "HATBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "HATBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "HATBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "HATBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "HATBOT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "HATBOT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "HATBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "HATBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "HATBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "HATBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "HATBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "HATBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "HATBOT_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "HATBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "HATBOT_SERVER_PORT")
	setStr(&cfg.Server.AuthToken, "HATBOT_SERVER_AUTH_TOKEN")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "HATBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "HATBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "HATBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "HATBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "HATBOT_MODE")
	setStr(&cfg.LogLevel, "HATBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
