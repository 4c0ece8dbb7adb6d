package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unusualtrade/hatbot/internal/bot"
	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/records"
	"github.com/unusualtrade/hatbot/internal/strategy"
)

const testAccountID = "76561198000000001"

// Keys are 67 to 69 refined (ratio 612 scrap); the Team Captain with Burning
// Flames is 100 to 120 keys, middle 110.
const catalogFixture = `{
	"response": {
		"success": 1,
		"items": {
			"Mann Co. Supply Crate Key": {
				"prices": {
					"6": {"Tradable": {"Craftable": {"0": {"currency": "metal", "value": 67, "value_high": 69, "last_update": 1700000000}}}}
				}
			},
			"Team Captain": {
				"prices": {
					"5": {"Tradable": {"Craftable": {
						"13": {"currency": "keys", "value": 100, "value_high": 120, "last_update": 1700000000}
					}}}
				}
			}
		}
	}
}`

type fakeCatalog struct {
	calls int
	err   error
}

func (f *fakeCatalog) GetCatalog(_ context.Context) (*economy.Catalog, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return economy.ParseCatalog([]byte(catalogFixture))
}

type fakeMarket struct {
	calls int
	err   error
}

func (f *fakeMarket) ClassifiedsForItem(_ context.Context, _ economy.Item) (*economy.Classifieds, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &economy.Classifieds{}, nil
}

type fakeInventory struct {
	items []economy.InventoryItem
	err   error
}

func (f *fakeInventory) GetInventory(_ context.Context, _ string) ([]economy.InventoryItem, error) {
	return f.items, f.err
}

type fakePublisher struct {
	calls    int
	listings []economy.Listing
}

func (f *fakePublisher) PublishListings(_ context.Context, listings []economy.Listing, _ strategy.DescriptionFunc) error {
	f.calls++
	f.listings = listings
	return nil
}

type memStore struct {
	saves int
	last  *bot.Snapshot
	err   error
}

func (m *memStore) Save(snap *bot.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.last = snap
	return nil
}

type fakeResponder struct {
	offerIDs  []string
	responses []economy.OfferResponse
	err       error
}

func (f *fakeResponder) RespondOffer(_ context.Context, offerID string, response economy.OfferResponse) error {
	if f.err != nil {
		return f.err
	}
	f.offerIDs = append(f.offerIDs, offerID)
	f.responses = append(f.responses, response)
	return nil
}

type countingWaiter struct {
	calls int
	err   error
}

func (w *countingWaiter) Wait(_ context.Context, _ string, _ int, _ time.Duration) error {
	w.calls++
	return w.err
}

type fakeOfferArchiver struct {
	calls  int
	before time.Time
	count  int64
	err    error
}

func (f *fakeOfferArchiver) ArchiveOffers(_ context.Context, before time.Time) (int64, error) {
	f.calls++
	f.before = before
	return f.count, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSuite(t *testing.T) *strategy.Suite {
	t.Helper()
	sell, err := strategy.FixedRatioSell(1.0)
	require.NoError(t, err)
	buy, err := strategy.FixedRatioBuy(0.5)
	require.NoError(t, err)
	return &strategy.Suite{
		SellPricer:    sell,
		BuyPricer:     buy,
		Acceptability: strategy.AcceptAll(),
		Ratio:         strategy.CatalogRatio(),
		Description:   strategy.SimpleDescription(),
	}
}

func testBot(t *testing.T) *bot.TradingBot {
	t.Helper()
	b, err := bot.New(testAccountID, testSuite(t), testLogger())
	require.NoError(t, err)
	return b
}

func ownedCaptain(t *testing.T) economy.InventoryItem {
	t.Helper()
	effect, err := economy.EffectForCode(13)
	require.NoError(t, err)
	item, err := economy.NewInventoryItem("Team Captain", economy.QualityUnusual, effect, "1234")
	require.NoError(t, err)
	return item
}

func keyItems(t *testing.T, n int) []economy.InventoryItem {
	t.Helper()
	out := make([]economy.InventoryItem, 0, n)
	for i := 0; i < n; i++ {
		item, err := economy.NewInventoryItem("Mann Co. Supply Crate Key", economy.QualityUnique, economy.NoEffect, "key-asset")
		require.NoError(t, err)
		out = append(out, item)
	}
	return out
}

func TestCycleRunsAllSteps(t *testing.T) {
	b := testBot(t)
	catalog := &fakeCatalog{}
	market := &fakeMarket{}
	inventory := &fakeInventory{items: []economy.InventoryItem{ownedCaptain(t)}}
	publisher := &fakePublisher{}
	store := &memStore{}

	runner := NewCycleRunner(b, catalog, market, inventory, publisher, store, 0.5, testLogger())
	require.NoError(t, runner.Refresh(context.Background()))
	require.NoError(t, runner.ReadInventory(context.Background()))
	require.NoError(t, runner.Cycle(context.Background()))

	assert.Equal(t, 2, catalog.calls)
	// One classifieds search for the owned hat's sell listing; the buy
	// listing for the same hat is pruned as an owned duplicate.
	assert.Equal(t, 1, market.calls)
	// State is saved after reconciling and again after repricing.
	assert.Equal(t, 2, store.saves)
	require.NotNil(t, store.last)

	require.Equal(t, 1, publisher.calls)
	require.Len(t, publisher.listings, 1)
}

func TestCycleContinuesPastFailingSteps(t *testing.T) {
	b := testBot(t)
	publisher := &fakePublisher{}

	// Prime the bot so later cycles have something to work with.
	runner := NewCycleRunner(b, &fakeCatalog{}, &fakeMarket{}, &fakeInventory{items: []economy.InventoryItem{ownedCaptain(t)}}, publisher, &memStore{}, 0.5, testLogger())
	require.NoError(t, runner.Refresh(context.Background()))
	require.NoError(t, runner.ReadInventory(context.Background()))
	require.NoError(t, runner.Cycle(context.Background()))

	// Every collaborator now fails except the publisher.
	broken := NewCycleRunner(
		b,
		&fakeCatalog{err: errors.New("catalog down")},
		&fakeMarket{err: errors.New("search down")},
		&fakeInventory{err: errors.New("inventory down")},
		publisher,
		&memStore{err: errors.New("disk full")},
		0.5,
		testLogger(),
	)
	require.NoError(t, broken.Cycle(context.Background()))

	// The previously priced listing is still published.
	assert.Equal(t, 2, publisher.calls)
	assert.Len(t, publisher.listings, 1)
}

func TestCycleReturnsContextError(t *testing.T) {
	b := testBot(t)
	runner := NewCycleRunner(b, &fakeCatalog{}, &fakeMarket{}, &fakeInventory{}, &fakePublisher{}, &memStore{}, 0.5, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, runner.Cycle(ctx), context.Canceled)
}

func TestThrottledMarketWaitsBeforeEachSearch(t *testing.T) {
	waiter := &countingWaiter{}
	market := &fakeMarket{}
	src := NewThrottledMarket(market, waiter, 10, time.Minute)

	item, err := economy.NewItem("Team Captain", economy.QualityUnique, economy.NoEffect)
	require.NoError(t, err)
	_, err = src.ClassifiedsForItem(context.Background(), item)
	require.NoError(t, err)
	_, err = src.ClassifiedsForItem(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, 2, waiter.calls)
	assert.Equal(t, 2, market.calls)
}

func TestThrottledMarketWaitFailureSkipsSearch(t *testing.T) {
	waiter := &countingWaiter{err: errors.New("redis down")}
	market := &fakeMarket{}
	src := NewThrottledMarket(market, waiter, 10, time.Minute)

	item, err := economy.NewItem("Team Captain", economy.QualityUnique, economy.NoEffect)
	require.NoError(t, err)
	_, err = src.ClassifiedsForItem(context.Background(), item)
	require.Error(t, err)
	assert.Equal(t, 0, market.calls)
}

func TestThrottledMarketDisabledPassesThrough(t *testing.T) {
	market := &fakeMarket{}
	assert.Equal(t, strategy.MarketSource(market), NewThrottledMarket(market, nil, 10, time.Minute))
	assert.Equal(t, strategy.MarketSource(market), NewThrottledMarket(market, &countingWaiter{}, 0, time.Minute))
}

// readyBot returns a bot that owns a priced Team Captain.
func readyBot(t *testing.T) *bot.TradingBot {
	t.Helper()
	b := testBot(t)
	require.NoError(t, b.UpdateAndFilter(context.Background(), &fakeCatalog{}))
	require.NoError(t, b.ReadInventory(context.Background(), &fakeInventory{items: []economy.InventoryItem{ownedCaptain(t)}}, 0.5))
	require.NoError(t, b.RecalculatePrices(context.Background(), &fakeMarket{}, nil))
	return b
}

func TestOfferProcessorAcceptedSale(t *testing.T) {
	b := readyBot(t)
	responder := &fakeResponder{}
	store := &memStore{}
	journal := records.NewJournal()

	p := NewOfferProcessor(b, responder, store, journal, nil, economy.EvalOptions{}, 0.5, testLogger())

	offer := economy.Offer{
		Partner:   "customer",
		ToGive:    []economy.InventoryItem{ownedCaptain(t)},
		ToReceive: keyItems(t, 110),
	}
	p.HandleOffer(context.Background(), "4242", offer)

	require.Equal(t, []string{"4242"}, responder.offerIDs)
	assert.Equal(t, []economy.OfferResponse{economy.ResponseAccept}, responder.responses)

	// The sold hat is gone and the new state was persisted and journaled.
	assert.Equal(t, 0, b.Sells().Len())
	assert.Equal(t, 1, store.saves)
	require.Equal(t, 1, journal.Len())
}

func TestOfferProcessorRespondFailureLeavesState(t *testing.T) {
	b := readyBot(t)
	responder := &fakeResponder{err: errors.New("relay down")}
	store := &memStore{}
	journal := records.NewJournal()

	p := NewOfferProcessor(b, responder, store, journal, nil, economy.EvalOptions{}, 0.5, testLogger())

	offer := economy.Offer{
		Partner:   "customer",
		ToGive:    []economy.InventoryItem{ownedCaptain(t)},
		ToReceive: keyItems(t, 110),
	}
	p.HandleOffer(context.Background(), "4242", offer)

	// Nothing was applied or recorded, so a redelivered offer evaluates
	// against the same state.
	assert.Equal(t, 1, b.Sells().Len())
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, 0, journal.Len())
}

func TestArchiverRunFlushesRecords(t *testing.T) {
	archiver := &fakeOfferArchiver{count: 3}
	a := NewArchiver(archiver, testLogger())

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 1, archiver.calls)
	assert.WithinDuration(t, time.Now().UTC(), archiver.before, time.Minute)
}

func TestArchiverRunPropagatesFailure(t *testing.T) {
	a := NewArchiver(&fakeOfferArchiver{err: errors.New("bucket gone")}, testLogger())
	assert.Error(t, a.Run(context.Background()))
}

func TestArchiverRunCronRejectsBadExpression(t *testing.T) {
	a := NewArchiver(&fakeOfferArchiver{}, testLogger())
	err := a.RunCron(context.Background(), "not a cron")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing cron expression")
}

func TestOrchestratorOnceModeRunsSingleCycle(t *testing.T) {
	b := testBot(t)
	catalog := &fakeCatalog{}
	store := &memStore{}
	runner := NewCycleRunner(b, catalog, &fakeMarket{}, &fakeInventory{}, &fakePublisher{}, store, 0.5, testLogger())

	o := NewOrchestrator(runner, nil, nil, ModeOnce, time.Hour, "0 3 * * *", testLogger())
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, 2, store.saves)
}

func TestOrchestratorStopsOnCancel(t *testing.T) {
	b := testBot(t)
	runner := NewCycleRunner(b, &fakeCatalog{}, &fakeMarket{}, &fakeInventory{}, &fakePublisher{}, &memStore{}, 0.5, testLogger())
	o := NewOrchestrator(runner, nil, nil, ModePrice, 50*time.Millisecond, "0 3 * * *", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator did not stop after cancel")
	}
}
