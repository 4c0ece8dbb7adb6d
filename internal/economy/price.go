// Package economy contains the trading bot's core domain: prices, item
// identities, listings, listing collections, market-data documents, and the
// trade-offer evaluator.
//
// All currency arithmetic takes the current key-to-scrap ratio as an explicit
// parameter. The ratio is market-derived and changes over the bot's lifetime,
// so it must never be baked into a stored value.
package economy

import (
	"fmt"
	"math"
)

// ScrapPerRefined is the number of scrap in one refined. It is a property of
// the game's currency system, not a tunable.
const ScrapPerRefined = 9

// Price is an immutable item price in keys and refined.
type Price struct {
	Keys    int `json:"keys"`
	Refined int `json:"metal"`
}

// NewPrice returns a Price with the given keys and refined values.
func NewPrice(keys, refined int) (Price, error) {
	if keys < 0 || refined < 0 {
		return Price{}, fmt.Errorf("economy: price (%d keys, %d refined): negative component: %w", keys, refined, ErrInvalidArgument)
	}
	return Price{Keys: keys, Refined: refined}, nil
}

func checkRatio(keyScrapRatio int) error {
	if keyScrapRatio <= 0 {
		return fmt.Errorf("economy: key-to-scrap ratio %d: %w", keyScrapRatio, ErrInvalidArgument)
	}
	return nil
}

// Decimal returns this price in keys as a decimal value.
func (p Price) Decimal(keyScrapRatio int) (float64, error) {
	if err := checkRatio(keyScrapRatio); err != nil {
		return 0, err
	}
	return float64(p.Keys) + float64(p.Refined*ScrapPerRefined)/float64(keyScrapRatio), nil
}

// ScrapValue returns this price as a total number of scrap. Scrap is the
// canonical unit whenever prices of different granularity are summed or
// compared as absolute totals.
func (p Price) ScrapValue(keyScrapRatio int) (int, error) {
	if err := checkRatio(keyScrapRatio); err != nil {
		return 0, err
	}
	return p.Keys*keyScrapRatio + p.Refined*ScrapPerRefined, nil
}

// PriceFromDecimal converts a decimal key value to a Price. The fractional
// part is converted to refined rounding half-up; the same rounding rule is
// used everywhere in this package.
func PriceFromDecimal(decimal float64, keyScrapRatio int) (Price, error) {
	if err := checkRatio(keyScrapRatio); err != nil {
		return Price{}, err
	}
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) || decimal < 0 {
		return Price{}, fmt.Errorf("economy: decimal price %v: %w", decimal, ErrInvalidArgument)
	}
	keys := int(decimal)
	refined := int(math.Round((decimal - float64(keys)) * float64(keyScrapRatio) / ScrapPerRefined))
	return Price{Keys: keys, Refined: refined}, nil
}

// ScaleBy returns this price scaled by the given factor.
func (p Price) ScaleBy(factor float64, keyScrapRatio int) (Price, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Price{}, fmt.Errorf("economy: scale factor %v: %w", factor, ErrInvalidArgument)
	}
	d, err := p.Decimal(keyScrapRatio)
	if err != nil {
		return Price{}, err
	}
	return PriceFromDecimal(d*factor, keyScrapRatio)
}

// AveragePrice returns the decimal average of the given prices. At least one
// price must be provided.
func AveragePrice(keyScrapRatio int, prices ...Price) (Price, error) {
	if err := checkRatio(keyScrapRatio); err != nil {
		return Price{}, err
	}
	if len(prices) == 0 {
		return Price{}, fmt.Errorf("economy: average of zero prices: %w", ErrInvalidArgument)
	}
	var total float64
	for _, p := range prices {
		d, err := p.Decimal(keyScrapRatio)
		if err != nil {
			return Price{}, err
		}
		total += d
	}
	return PriceFromDecimal(total/float64(len(prices)), keyScrapRatio)
}

// Compare orders prices lexicographically by (keys, refined). Both prices
// must already be normalized against the same ratio for the ordering to be
// economically meaningful.
func (p Price) Compare(other Price) int {
	if p.Keys != other.Keys {
		if p.Keys < other.Keys {
			return -1
		}
		return 1
	}
	if p.Refined != other.Refined {
		if p.Refined < other.Refined {
			return -1
		}
		return 1
	}
	return 0
}

// String renders the price in the form used by listing descriptions and
// offer narratives.
func (p Price) String() string {
	return fmt.Sprintf("%d keys, %d refined", p.Keys, p.Refined)
}
