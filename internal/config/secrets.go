package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Backpack
	out.Backpack = cfg.Backpack
	redact(&out.Backpack.APIKey)
	redact(&out.Backpack.Token)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// S3
	out.S3 = cfg.S3
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	// Server
	out.Server = cfg.Server
	redact(&out.Server.AuthToken)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Bot.OwnerIDs != nil {
		out.Bot.OwnerIDs = make([]string, len(cfg.Bot.OwnerIDs))
		copy(out.Bot.OwnerIDs, cfg.Bot.OwnerIDs)
	}
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}

	// Copy strategy parameter maps so mutations to the redacted copy do not
	// affect the original.
	out.Strategy.SellPricer.Params = copyParams(cfg.Strategy.SellPricer.Params)
	out.Strategy.BuyPricer.Params = copyParams(cfg.Strategy.BuyPricer.Params)
	out.Strategy.Acceptability.Params = copyParams(cfg.Strategy.Acceptability.Params)
	out.Strategy.Ratio.Params = copyParams(cfg.Strategy.Ratio.Params)
	out.Strategy.Description.Params = copyParams(cfg.Strategy.Description.Params)

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}

func copyParams(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
