package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/unusualtrade/hatbot/internal/economy"
)

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("strategy: %s %v: %w", name, v, economy.ErrInvalidArgument)
	}
	return nil
}

func checkPositive(name string, v float64) error {
	if err := checkFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("strategy: %s %v must be positive: %w", name, v, economy.ErrInvalidArgument)
	}
	return nil
}

// FixedRatioSell prices every item at ratioOfPrice times the middle of its
// community price.
func FixedRatioSell(ratioOfPrice float64) (SellPricer, error) {
	if err := checkPositive("sell ratio", ratioOfPrice); err != nil {
		return nil, err
	}
	return func(_ context.Context, l *economy.SellListing, _ MarketSource, keyScrapRatio int) (economy.Price, error) {
		return l.CommunityPrice().Middle.ScaleBy(ratioOfPrice, keyScrapRatio)
	}, nil
}

// ProfitByRatio prices at the purchase price plus profitRatio times the
// middle of the community price.
func ProfitByRatio(profitRatio float64) (SellPricer, error) {
	if err := checkPositive("profit ratio", profitRatio); err != nil {
		return nil, err
	}
	return func(_ context.Context, l *economy.SellListing, _ MarketSource, keyScrapRatio int) (economy.Price, error) {
		middle, err := l.CommunityPrice().Middle.Decimal(keyScrapRatio)
		if err != nil {
			return economy.Price{}, err
		}
		bought, err := l.PurchasePrice().Decimal(keyScrapRatio)
		if err != nil {
			return economy.Price{}, err
		}
		return economy.PriceFromDecimal(bought+profitRatio*middle, keyScrapRatio)
	}, nil
}

// Decay prices along a negative exponential of the item's age in days. At
// age zero the price is sellRatio times the community middle; as the item
// sits unsold the price approaches purchase price plus minProfitRatio times
// the community middle, never dropping below that floor. Higher speed drops
// faster.
func Decay(sellRatio, minProfitRatio, speed float64) (SellPricer, error) {
	if err := checkPositive("sell ratio", sellRatio); err != nil {
		return nil, err
	}
	if err := checkPositive("minimum profit ratio", minProfitRatio); err != nil {
		return nil, err
	}
	if err := checkPositive("decay speed", speed); err != nil {
		return nil, err
	}
	return func(_ context.Context, l *economy.SellListing, _ MarketSource, keyScrapRatio int) (economy.Price, error) {
		middle, err := l.CommunityPrice().Middle.Decimal(keyScrapRatio)
		if err != nil {
			return economy.Price{}, err
		}
		bought, err := l.PurchasePrice().Decimal(keyScrapRatio)
		if err != nil {
			return economy.Price{}, err
		}
		age := l.AgeDays(time.Now().UTC())
		ceiling := middle * sellRatio
		floor := bought + minProfitRatio*middle
		value := (ceiling-floor)*math.Pow(float64(age+1), -speed) + floor
		return economy.PriceFromDecimal(value, keyScrapRatio)
	}, nil
}

// comparablePrices fetches the classifieds for an item and strips the bot's
// own listings plus listings without a concrete effect.
func comparablePrices(ctx context.Context, src MarketSource, item economy.Item, botAccountID string) (*economy.Classifieds, error) {
	cl, err := src.ClassifiedsForItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("strategy: classifieds for %s: %w", item, err)
	}
	cl.RemoveFromAccount(botAccountID)
	cl.RemoveWithoutEffect()
	return cl, nil
}

// UndercutByMarket averages the first listingsToConsider live sell listings
// for the item and undercuts the average by undercutRatio of the community
// middle price (a negative ratio overcuts). With no comparable listings the
// price falls back to defaultRatio of the community middle. With mustProfit
// the price never goes below the purchase price.
func UndercutByMarket(listingsToConsider int, undercutRatio, defaultRatio float64, mustProfit bool, botAccountID string) (SellPricer, error) {
	if err := checkFinite("undercut ratio", undercutRatio); err != nil {
		return nil, err
	}
	if err := checkPositive("default ratio", defaultRatio); err != nil {
		return nil, err
	}
	if listingsToConsider <= 0 {
		return nil, fmt.Errorf("strategy: listings to consider %d: %w", listingsToConsider, economy.ErrInvalidArgument)
	}
	if botAccountID == "" {
		return nil, fmt.Errorf("strategy: undercut pricer without bot account ID: %w", economy.ErrInvalidArgument)
	}
	return func(ctx context.Context, l *economy.SellListing, src MarketSource, keyScrapRatio int) (economy.Price, error) {
		cl, err := comparablePrices(ctx, src, l.Item(), botAccountID)
		if err != nil {
			return economy.Price{}, err
		}

		n := min(listingsToConsider, len(cl.Sell))
		if n == 0 {
			return l.CommunityPrice().Middle.ScaleBy(defaultRatio, keyScrapRatio)
		}

		prices := lo.Map(cl.Sell[:n], func(c economy.ClassifiedListing, _ int) economy.Price { return c.Price })
		avg, err := economy.AveragePrice(keyScrapRatio, prices...)
		if err != nil {
			return economy.Price{}, err
		}
		tentative, err := avg.ScaleBy(1-undercutRatio, keyScrapRatio)
		if err != nil {
			return economy.Price{}, err
		}

		if mustProfit {
			tentativeValue, err := tentative.ScrapValue(keyScrapRatio)
			if err != nil {
				return economy.Price{}, err
			}
			boughtValue, err := l.PurchasePrice().ScrapValue(keyScrapRatio)
			if err != nil {
				return economy.Price{}, err
			}
			if tentativeValue < boughtValue {
				return l.PurchasePrice(), nil
			}
		}
		return tentative, nil
	}, nil
}
