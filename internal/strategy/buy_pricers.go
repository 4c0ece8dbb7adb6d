package strategy

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// FixedRatioBuy prices every buy listing at ratioOfPrice times the middle of
// its community price.
func FixedRatioBuy(ratioOfPrice float64) (BuyPricer, error) {
	if err := checkPositive("buy ratio", ratioOfPrice); err != nil {
		return nil, err
	}
	return func(_ context.Context, l *economy.BuyListing, _ MarketSource, keyScrapRatio int) (economy.Price, error) {
		return l.CommunityPrice().Middle.ScaleBy(ratioOfPrice, keyScrapRatio)
	}, nil
}

// OvercutByMarket averages the first listingsToConsider live buy listings
// for the item and overcuts the average by overcutRatio (a negative ratio
// undercuts). The price is capped at maxRatio of the community middle, and
// falls back to defaultRatio of the community middle when there are no
// comparable listings.
func OvercutByMarket(listingsToConsider int, overcutRatio, maxRatio, defaultRatio float64, botAccountID string) (BuyPricer, error) {
	if err := checkFinite("overcut ratio", overcutRatio); err != nil {
		return nil, err
	}
	if err := checkPositive("max ratio", maxRatio); err != nil {
		return nil, err
	}
	if err := checkPositive("default ratio", defaultRatio); err != nil {
		return nil, err
	}
	if listingsToConsider <= 0 {
		return nil, fmt.Errorf("strategy: listings to consider %d: %w", listingsToConsider, economy.ErrInvalidArgument)
	}
	if botAccountID == "" {
		return nil, fmt.Errorf("strategy: overcut pricer without bot account ID: %w", economy.ErrInvalidArgument)
	}
	return func(ctx context.Context, l *economy.BuyListing, src MarketSource, keyScrapRatio int) (economy.Price, error) {
		cl, err := comparablePrices(ctx, src, l.Item(), botAccountID)
		if err != nil {
			return economy.Price{}, err
		}

		middle := l.CommunityPrice().Middle
		n := min(listingsToConsider, len(cl.Buy))
		if n == 0 {
			return middle.ScaleBy(defaultRatio, keyScrapRatio)
		}

		prices := lo.Map(cl.Buy[:n], func(c economy.ClassifiedListing, _ int) economy.Price { return c.Price })
		avg, err := economy.AveragePrice(keyScrapRatio, prices...)
		if err != nil {
			return economy.Price{}, err
		}
		tentative, err := avg.ScaleBy(overcutRatio+1, keyScrapRatio)
		if err != nil {
			return economy.Price{}, err
		}

		tentativeDec, err := tentative.Decimal(keyScrapRatio)
		if err != nil {
			return economy.Price{}, err
		}
		middleDec, err := middle.Decimal(keyScrapRatio)
		if err != nil {
			return economy.Price{}, err
		}
		if middleDec > 0 && tentativeDec/middleDec > maxRatio {
			return economy.PriceFromDecimal(middleDec*maxRatio, keyScrapRatio)
		}
		return tentative, nil
	}, nil
}
