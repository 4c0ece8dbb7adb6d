package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/strategy"
)

// Waiter blocks until another call is allowed under the named rate limit.
type Waiter interface {
	Wait(ctx context.Context, key string, limit int, window time.Duration) error
}

// searchRateKey is the shared limit bucket for classifieds searches. All bot
// instances pointed at the same Redis share it.
const searchRateKey = "classifieds_search"

// ThrottledMarket wraps a MarketSource so every classifieds search first
// clears the shared rate limit. Repricing a few hundred listings back to back
// would otherwise trip the marketplace's request cap.
type ThrottledMarket struct {
	src    strategy.MarketSource
	waiter Waiter
	limit  int
	window time.Duration
}

// NewThrottledMarket wraps src with the given limit. A nil waiter or a
// non-positive limit returns src unchanged.
func NewThrottledMarket(src strategy.MarketSource, waiter Waiter, limit int, window time.Duration) strategy.MarketSource {
	if waiter == nil || limit <= 0 {
		return src
	}
	return &ThrottledMarket{
		src:    src,
		waiter: waiter,
		limit:  limit,
		window: window,
	}
}

// ClassifiedsForItem implements strategy.MarketSource.
func (t *ThrottledMarket) ClassifiedsForItem(ctx context.Context, item economy.Item) (*economy.Classifieds, error) {
	if err := t.waiter.Wait(ctx, searchRateKey, t.limit, t.window); err != nil {
		return nil, fmt.Errorf("pipeline: rate limit wait: %w", err)
	}
	return t.src.ClassifiedsForItem(ctx, item)
}
