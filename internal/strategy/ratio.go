package strategy

import (
	"fmt"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// FixedRatio ignores the catalog and always returns the given ratio.
func FixedRatio(keyScrapRatio int) (RatioFunc, error) {
	if keyScrapRatio <= 0 {
		return nil, fmt.Errorf("strategy: key-to-scrap ratio %d: %w", keyScrapRatio, economy.ErrInvalidArgument)
	}
	return func(*economy.Catalog) (int, error) {
		return keyScrapRatio, nil
	}, nil
}

// CatalogRatio derives the ratio from the catalog's own key price entry.
func CatalogRatio() RatioFunc {
	return func(c *economy.Catalog) (int, error) {
		return c.KeyScrapRatio()
	}
}
