package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unusualtrade/hatbot/internal/economy"
)

func TestRegistryBuildsConfiguredSellPricer(t *testing.T) {
	r := NewRegistry("bot")

	pricer, err := r.SellPricer("fixed_ratio", Params{"ratio": 1.2})
	require.NoError(t, err)

	price, err := pricer(context.Background(), newSell(t, 8, time.Now()), nil, testRatio)
	require.NoError(t, err)
	assert.Equal(t, economy.Price{Keys: 12}, price)
}

func TestRegistryUnknownTagListsKnownTags(t *testing.T) {
	r := NewRegistry("bot")

	_, err := r.SellPricer("bogus", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bogus"`)
	assert.Contains(t, err.Error(), "undercut_by_market")

	_, err = r.Ratio("bogus", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from_catalog")
}

func TestRegistryParamCoercion(t *testing.T) {
	r := NewRegistry("bot")

	// TOML integers arrive as int64.
	pricer, err := r.BuyPricer("overcut_by_market", Params{
		"listings_to_consider": int64(2),
		"overcut_ratio":        0.0,
		"max_ratio":            2.0,
		"default_ratio":        0.7,
	})
	require.NoError(t, err)
	require.NotNil(t, pricer)

	_, err = r.Ratio("fixed", Params{"ratio": int64(500)})
	require.NoError(t, err)
}

func TestRegistryInvalidParamsFailBuild(t *testing.T) {
	r := NewRegistry("bot")

	_, err := r.SellPricer("fixed_ratio", Params{"ratio": -1.0})
	assert.ErrorIs(t, err, economy.ErrInvalidArgument)

	// The fixed ratio function has no usable default.
	_, err = r.Ratio("fixed", nil)
	assert.ErrorIs(t, err, economy.ErrInvalidArgument)

	_, err = r.Acceptability("check_type", Params{"effects": []any{"No Such Effect"}})
	assert.ErrorIs(t, err, economy.ErrMalformedData)
}

func TestRegistryCustomRegistration(t *testing.T) {
	r := NewRegistry("bot")
	r.RegisterRatio("always_one", func(Params) (RatioFunc, error) {
		fn := func(*economy.Catalog) (int, error) { return 1, nil }
		return fn, nil
	})

	fn, err := r.Ratio("always_one", nil)
	require.NoError(t, err)
	ratio, err := fn(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ratio)
}

func TestBuildSuite(t *testing.T) {
	r := NewRegistry("bot")

	suite, err := r.BuildSuite(SuiteConfig{
		SellPricer:    FunctionConfig{Tag: "decay", Params: Params{"sell_ratio": 1.1, "min_profit_ratio": 0.05, "speed": 0.5}},
		BuyPricer:     FunctionConfig{Tag: "overcut_by_market"},
		Acceptability: FunctionConfig{Tag: "check_data", Params: Params{"min_keys": 5.0}},
		Ratio:         FunctionConfig{Tag: "from_catalog"},
		Description:   FunctionConfig{Tag: "simple"},
	})
	require.NoError(t, err)
	require.NoError(t, suite.Validate())
}

func TestBuildSuiteUnknownTag(t *testing.T) {
	r := NewRegistry("bot")

	_, err := r.BuildSuite(SuiteConfig{
		SellPricer:    FunctionConfig{Tag: "decay"},
		BuyPricer:     FunctionConfig{Tag: "nope"},
		Acceptability: FunctionConfig{Tag: "accept_all"},
		Ratio:         FunctionConfig{Tag: "from_catalog"},
		Description:   FunctionConfig{Tag: "simple"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestSuiteValidate(t *testing.T) {
	var s Suite
	assert.Error(t, s.Validate())
}
