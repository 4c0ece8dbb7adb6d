package economy

import "fmt"

// PriceRange is a bounded interval of community consensus prices. It is
// immutable once built: construction normalizes so Lower <= Upper by decimal
// value and Middle is their average.
type PriceRange struct {
	Lower  Price `json:"lower"`
	Middle Price `json:"middle"`
	Upper  Price `json:"upper"`
}

// PointRange returns a PriceRange whose lower, middle, and upper bounds are
// all the given price.
func PointRange(p Price) PriceRange {
	return PriceRange{Lower: p, Middle: p, Upper: p}
}

// NewPriceRange builds a PriceRange from a (low, high) pair, swapping the
// bounds when they arrive out of order.
func NewPriceRange(low, high Price, keyScrapRatio int) (PriceRange, error) {
	middle, err := AveragePrice(keyScrapRatio, low, high)
	if err != nil {
		return PriceRange{}, fmt.Errorf("economy: price range: %w", err)
	}
	lowDec, err := low.Decimal(keyScrapRatio)
	if err != nil {
		return PriceRange{}, err
	}
	highDec, err := high.Decimal(keyScrapRatio)
	if err != nil {
		return PriceRange{}, err
	}
	if lowDec > highDec {
		low, high = high, low
	}
	return PriceRange{Lower: low, Middle: middle, Upper: high}, nil
}

// Spread returns the decimal width of the range.
func (r PriceRange) Spread(keyScrapRatio int) (float64, error) {
	high, err := r.Upper.Decimal(keyScrapRatio)
	if err != nil {
		return 0, err
	}
	low, err := r.Lower.Decimal(keyScrapRatio)
	if err != nil {
		return 0, err
	}
	return high - low, nil
}

func (r PriceRange) String() string {
	if r.Lower == r.Upper {
		return r.Middle.String()
	}
	return fmt.Sprintf("%s to %s", r.Lower.String(), r.Upper.String())
}
