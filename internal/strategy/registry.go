package strategy

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// Params carries a function's configuration values, as decoded from the
// strategy section of the config file.
type Params map[string]any

func (p Params) float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return def
}

func (p Params) integer(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func (p Params) boolean(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// strs returns a string slice parameter, or nil when it is absent. TOML
// arrays decode as []any, so both forms are handled.
func (p Params) strs(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}

func (p Params) effects(key string) ([]economy.Effect, error) {
	names := p.strs(key)
	if names == nil {
		return nil, nil
	}
	out := make([]economy.Effect, 0, len(names))
	for _, n := range names {
		e, err := economy.EffectForName(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Builder types construct a configured function from its parameters.
type (
	SellPricerBuilder    func(p Params) (SellPricer, error)
	BuyPricerBuilder     func(p Params) (BuyPricer, error)
	AcceptabilityBuilder func(p Params) (Acceptability, error)
	RatioBuilder         func(p Params) (RatioFunc, error)
	DescriptionBuilder   func(p Params) (DescriptionFunc, error)
)

// FunctionConfig selects one registered function by tag and carries its
// parameters.
type FunctionConfig struct {
	Tag    string
	Params Params
}

// SuiteConfig selects the five functions a Suite is assembled from.
type SuiteConfig struct {
	SellPricer    FunctionConfig
	BuyPricer     FunctionConfig
	Acceptability FunctionConfig
	Ratio         FunctionConfig
	Description   FunctionConfig
}

// Registry maps configuration tags to function builders. The built-in
// functions are registered at construction; callers may add their own. It is
// safe for concurrent use.
type Registry struct {
	botAccountID string

	mu            sync.RWMutex
	sellPricers   map[string]SellPricerBuilder
	buyPricers    map[string]BuyPricerBuilder
	acceptability map[string]AcceptabilityBuilder
	ratios        map[string]RatioBuilder
	descriptions  map[string]DescriptionBuilder
}

// NewRegistry returns a Registry with the built-in functions registered. The
// bot's marketplace account ID is needed by the market-relative pricers so
// the bot never reacts to its own listings.
func NewRegistry(botAccountID string) *Registry {
	r := &Registry{
		botAccountID:  botAccountID,
		sellPricers:   make(map[string]SellPricerBuilder),
		buyPricers:    make(map[string]BuyPricerBuilder),
		acceptability: make(map[string]AcceptabilityBuilder),
		ratios:        make(map[string]RatioBuilder),
		descriptions:  make(map[string]DescriptionBuilder),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	r.RegisterSellPricer("fixed_ratio", func(p Params) (SellPricer, error) {
		return FixedRatioSell(p.float("ratio", 1.0))
	})
	r.RegisterSellPricer("profit_by_ratio", func(p Params) (SellPricer, error) {
		return ProfitByRatio(p.float("profit_ratio", 0.1))
	})
	r.RegisterSellPricer("decay", func(p Params) (SellPricer, error) {
		return Decay(
			p.float("sell_ratio", 1.1),
			p.float("min_profit_ratio", 0.05),
			p.float("speed", 0.3),
		)
	})
	r.RegisterSellPricer("undercut_by_market", func(p Params) (SellPricer, error) {
		return UndercutByMarket(
			p.integer("listings_to_consider", 3),
			p.float("undercut_ratio", 0.01),
			p.float("default_ratio", 1.0),
			p.boolean("must_profit", true),
			r.botAccountID,
		)
	})

	r.RegisterBuyPricer("fixed_ratio", func(p Params) (BuyPricer, error) {
		return FixedRatioBuy(p.float("ratio", 0.8))
	})
	r.RegisterBuyPricer("overcut_by_market", func(p Params) (BuyPricer, error) {
		return OvercutByMarket(
			p.integer("listings_to_consider", 3),
			p.float("overcut_ratio", 0.01),
			p.float("max_ratio", 0.9),
			p.float("default_ratio", 0.7),
			r.botAccountID,
		)
	})

	r.RegisterAcceptability("accept_all", func(Params) (Acceptability, error) {
		return AcceptAll(), nil
	})
	r.RegisterAcceptability("check_data", func(p Params) (Acceptability, error) {
		return CheckData(
			p.float("min_keys", 0),
			p.float("max_keys", 0),
			p.float("max_range", -1),
			time.Duration(p.integer("max_age_seconds", 0))*time.Second,
		)
	})
	r.RegisterAcceptability("check_type", func(p Params) (Acceptability, error) {
		effects, err := p.effects("effects")
		if err != nil {
			return nil, err
		}
		return CheckType(
			p.boolean("name_allow", true),
			p.strs("names"),
			p.boolean("effect_allow", true),
			effects,
		), nil
	})
	r.RegisterAcceptability("check_data_and_type", func(p Params) (Acceptability, error) {
		effects, err := p.effects("effects")
		if err != nil {
			return nil, err
		}
		return CheckDataAndType(
			p.float("min_keys", 0),
			p.float("max_keys", 0),
			p.float("max_range", -1),
			time.Duration(p.integer("max_age_seconds", 0))*time.Second,
			p.boolean("name_allow", true),
			p.strs("names"),
			p.boolean("effect_allow", true),
			effects,
		)
	})

	r.RegisterRatio("fixed", func(p Params) (RatioFunc, error) {
		return FixedRatio(p.integer("ratio", 0))
	})
	r.RegisterRatio("from_catalog", func(Params) (RatioFunc, error) {
		return CatalogRatio(), nil
	})

	r.RegisterDescription("simple", func(Params) (DescriptionFunc, error) {
		return SimpleDescription(), nil
	})
	r.RegisterDescription("with_sayings", func(p Params) (DescriptionFunc, error) {
		return DescriptionWithSayings(p.boolean("place_before", false), p.strs("sayings")...)
	})
}

// RegisterSellPricer adds a sell pricer builder under the given tag,
// replacing any existing one.
func (r *Registry) RegisterSellPricer(tag string, b SellPricerBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sellPricers[tag] = b
}

func (r *Registry) RegisterBuyPricer(tag string, b BuyPricerBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buyPricers[tag] = b
}

func (r *Registry) RegisterAcceptability(tag string, b AcceptabilityBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acceptability[tag] = b
}

func (r *Registry) RegisterRatio(tag string, b RatioBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratios[tag] = b
}

func (r *Registry) RegisterDescription(tag string, b DescriptionBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptions[tag] = b
}

func knownTags[T any](m map[string]T) []string {
	tags := make([]string, 0, len(m))
	for t := range m {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// SellPricer builds the sell pricer registered under the given tag.
func (r *Registry) SellPricer(tag string, p Params) (SellPricer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.sellPricers[tag]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown sell pricer %q (known: %v)", tag, knownTags(r.sellPricers))
	}
	return b(p)
}

func (r *Registry) BuyPricer(tag string, p Params) (BuyPricer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buyPricers[tag]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown buy pricer %q (known: %v)", tag, knownTags(r.buyPricers))
	}
	return b(p)
}

func (r *Registry) Acceptability(tag string, p Params) (Acceptability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.acceptability[tag]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown acceptability function %q (known: %v)", tag, knownTags(r.acceptability))
	}
	return b(p)
}

func (r *Registry) Ratio(tag string, p Params) (RatioFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.ratios[tag]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown ratio function %q (known: %v)", tag, knownTags(r.ratios))
	}
	return b(p)
}

func (r *Registry) Description(tag string, p Params) (DescriptionFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.descriptions[tag]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown description function %q (known: %v)", tag, knownTags(r.descriptions))
	}
	return b(p)
}

// BuildSuite assembles a full Suite from configuration. Any unknown tag or
// invalid parameter fails the build.
func (r *Registry) BuildSuite(cfg SuiteConfig) (*Suite, error) {
	sell, err := r.SellPricer(cfg.SellPricer.Tag, cfg.SellPricer.Params)
	if err != nil {
		return nil, err
	}
	buy, err := r.BuyPricer(cfg.BuyPricer.Tag, cfg.BuyPricer.Params)
	if err != nil {
		return nil, err
	}
	accept, err := r.Acceptability(cfg.Acceptability.Tag, cfg.Acceptability.Params)
	if err != nil {
		return nil, err
	}
	ratio, err := r.Ratio(cfg.Ratio.Tag, cfg.Ratio.Params)
	if err != nil {
		return nil, err
	}
	desc, err := r.Description(cfg.Description.Tag, cfg.Description.Params)
	if err != nil {
		return nil, err
	}
	return &Suite{
		SellPricer:    sell,
		BuyPricer:     buy,
		Acceptability: accept,
		Ratio:         ratio,
		Description:   desc,
	}, nil
}
