package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currencyItem(t *testing.T, name, assetID string) InventoryItem {
	t.Helper()
	inv, err := NewInventoryItem(name, QualityUnique, NoEffect, assetID)
	require.NoError(t, err)
	return inv
}

func unusualInventory(t *testing.T, name string, effectCode int, assetID string) InventoryItem {
	t.Helper()
	inv, err := NewInventoryItem(name, QualityUnusual, mustEffect(t, effectCode), assetID)
	require.NoError(t, err)
	return inv
}

// evalCollections returns sell and buy collections each holding one visible
// listing for a Burning Flames Team Captain: selling at 10 keys, buying at
// 8 keys.
func evalCollections(t *testing.T) (*Collection, *Collection) {
	t.Helper()

	sells := NewCollection()
	s := newTestSell(t, "Team Captain", 13)
	s.SetPrice(&Price{Keys: 10})
	sells.Upsert(s)

	buys := NewCollection()
	b := newTestBuy(t, "Team Captain", 13)
	b.SetPrice(&Price{Keys: 8})
	buys.Upsert(b)

	return sells, buys
}

func TestEvaluateOfferAcceptsFairSale(t *testing.T) {
	sells, buys := evalCollections(t)
	offer := Offer{
		Partner: "partner",
		ToGive:  []InventoryItem{unusualInventory(t, "Team Captain", 13, "1")},
		ToReceive: []InventoryItem{
			currencyItem(t, KeyItemName, "2"),
			currencyItem(t, KeyItemName, "3"),
			currencyItem(t, KeyItemName, "4"),
			currencyItem(t, KeyItemName, "5"),
			currencyItem(t, KeyItemName, "6"),
			currencyItem(t, KeyItemName, "7"),
			currencyItem(t, KeyItemName, "8"),
			currencyItem(t, KeyItemName, "9"),
			currencyItem(t, KeyItemName, "10"),
			currencyItem(t, KeyItemName, "11"),
		},
	}

	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)

	assert.Equal(t, ResponseAccept, result.Response)
	assert.Equal(t, 10*testRatio, result.OurValue)
	assert.Equal(t, 10*testRatio, result.TheirValue)
	assert.Equal(t, "partner", result.Partner)
}

func TestEvaluateOfferDeclinesUnderpayment(t *testing.T) {
	sells, buys := evalCollections(t)
	offer := Offer{
		Partner:   "partner",
		ToGive:    []InventoryItem{unusualInventory(t, "Team Captain", 13, "1")},
		ToReceive: []InventoryItem{currencyItem(t, KeyItemName, "2")},
	}

	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)

	assert.Equal(t, ResponseDecline, result.Response)
	assert.Contains(t, result.Narrative, "declined")
}

func TestEvaluateOfferForgiveness(t *testing.T) {
	sells, buys := evalCollections(t)
	// 9 keys for a 10-key hat: a 10% deficit.
	offer := Offer{
		Partner: "partner",
		ToGive:  []InventoryItem{unusualInventory(t, "Team Captain", 13, "1")},
		ToReceive: []InventoryItem{
			currencyItem(t, KeyItemName, "2"),
			currencyItem(t, KeyItemName, "3"),
			currencyItem(t, KeyItemName, "4"),
			currencyItem(t, KeyItemName, "5"),
			currencyItem(t, KeyItemName, "6"),
			currencyItem(t, KeyItemName, "7"),
			currencyItem(t, KeyItemName, "8"),
			currencyItem(t, KeyItemName, "9"),
			currencyItem(t, KeyItemName, "10"),
		},
	}

	strict, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, ResponseDecline, strict.Response)

	lenient, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{Forgiveness: 0.1})
	require.NoError(t, err)
	assert.Equal(t, ResponseAccept, lenient.Response)
}

func TestEvaluateOfferCurrencyValues(t *testing.T) {
	sells, buys := evalCollections(t)
	offer := Offer{
		Partner: "partner",
		ToReceive: []InventoryItem{
			currencyItem(t, KeyItemName, "1"),
			currencyItem(t, RefinedMetalName, "2"),
			currencyItem(t, ReclaimedMetalName, "3"),
			currencyItem(t, ScrapMetalName, "4"),
		},
	}

	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)

	assert.Equal(t, ResponseAccept, result.Response, "free items are always worth taking")
	assert.Equal(t, testRatio+9+3+1, result.TheirValue)
	assert.Zero(t, result.OurValue)
}

func TestEvaluateOfferBuySideUsesBuyPrices(t *testing.T) {
	sells, buys := evalCollections(t)
	// The hat is offered for its 8-key buy price.
	offer := Offer{
		Partner:   "partner",
		ToGive:    []InventoryItem{currencyItem(t, KeyItemName, "1"), currencyItem(t, KeyItemName, "2"), currencyItem(t, KeyItemName, "3"), currencyItem(t, KeyItemName, "4"), currencyItem(t, KeyItemName, "5"), currencyItem(t, KeyItemName, "6"), currencyItem(t, KeyItemName, "7"), currencyItem(t, KeyItemName, "8")},
		ToReceive: []InventoryItem{unusualInventory(t, "Team Captain", 13, "9")},
	}

	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)

	assert.Equal(t, ResponseAccept, result.Response)
	assert.Equal(t, 8*testRatio, result.OurValue)
	assert.Equal(t, 8*testRatio, result.TheirValue)
}

func TestEvaluateOfferUnknownGiveSideNeverAccepted(t *testing.T) {
	sells, buys := evalCollections(t)
	offer := Offer{
		Partner: "partner",
		ToGive: []InventoryItem{
			unusualInventory(t, "Villain's Veil", 13, "1"),
		},
		ToReceive: []InventoryItem{currencyItem(t, KeyItemName, "2")},
	}

	declined, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, ResponseDecline, declined.Response)
	assert.Equal(t, unknownValueSentinel, declined.OurValue)

	held, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{CanHold: true})
	require.NoError(t, err)
	assert.Equal(t, ResponseHold, held.Response)
	assert.Contains(t, held.Narrative, "not in our pricelist")
}

func TestEvaluateOfferUnknownGiveSideValueDoesNotAccumulate(t *testing.T) {
	sells, buys := evalCollections(t)
	offer := Offer{
		Partner: "partner",
		ToGive: []InventoryItem{
			unusualInventory(t, "Villain's Veil", 13, "1"),
			unusualInventory(t, "Killer Exclusive", 13, "2"),
		},
	}

	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, unknownValueSentinel, result.OurValue)
}

func TestEvaluateOfferUnknownReceiveSideHolds(t *testing.T) {
	sells, buys := evalCollections(t)
	offer := Offer{
		Partner: "partner",
		ToGive:  []InventoryItem{unusualInventory(t, "Team Captain", 13, "1")},
		ToReceive: []InventoryItem{
			unusualInventory(t, "Villain's Veil", 13, "2"),
		},
	}

	held, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{CanHold: true})
	require.NoError(t, err)
	assert.Equal(t, ResponseHold, held.Response)
	assert.Zero(t, held.TheirValue, "unpriced incoming items count for nothing")

	declined, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, ResponseDecline, declined.Response)
}

func TestEvaluateOfferNonVisibleListingIsUnknown(t *testing.T) {
	sells, buys := evalCollections(t)
	unpriced := newTestBuy(t, "Villain's Veil", 13)
	buys.Upsert(unpriced)

	offer := Offer{
		Partner:   "partner",
		ToReceive: []InventoryItem{unusualInventory(t, "Villain's Veil", 13, "1")},
	}

	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{CanHold: true})
	require.NoError(t, err)
	assert.Equal(t, ResponseHold, result.Response)
}

func TestEvaluateOfferOwnerBypass(t *testing.T) {
	sells, buys := evalCollections(t)
	offer := Offer{
		Partner: "boss",
		ToGive:  []InventoryItem{unusualInventory(t, "Team Captain", 13, "1")},
	}

	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{Owners: []string{"boss", "other"}})
	require.NoError(t, err)

	assert.Equal(t, ResponseAccept, result.Response)
	assert.Contains(t, result.Narrative, "boss is an owner")
}

func TestEvaluateOfferEmptyOfferAccepted(t *testing.T) {
	sells, buys := evalCollections(t)

	result, err := EvaluateOffer(Offer{Partner: "partner"}, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, ResponseAccept, result.Response)
}

func TestEvaluateOfferNarrativeIsDeterministic(t *testing.T) {
	sells, buys := evalCollections(t)
	offer := Offer{
		Partner:   "partner",
		ToGive:    []InventoryItem{unusualInventory(t, "Team Captain", 13, "1")},
		ToReceive: []InventoryItem{currencyItem(t, KeyItemName, "2")},
	}

	first, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)
	second, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.Narrative, second.Narrative)
	assert.Contains(t, first.Narrative, "Our items include:")
	assert.Contains(t, first.Narrative, "Their items include:")
	assert.Contains(t, first.Narrative, "Our value: 1800 Their value: 180")
}

func TestEvaluateOfferValidation(t *testing.T) {
	sells, buys := evalCollections(t)

	_, err := EvaluateOffer(Offer{}, sells, buys, 0, EvalOptions{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EvaluateOffer(Offer{}, sells, buys, testRatio, EvalOptions{Forgiveness: 1.5})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EvaluateOffer(Offer{}, nil, buys, testRatio, EvalOptions{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEvaluateOfferDoesNotMutateInputs(t *testing.T) {
	sells, buys := evalCollections(t)
	give := []InventoryItem{unusualInventory(t, "Team Captain", 13, "1")}
	offer := Offer{Partner: "partner", ToGive: give}

	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)

	result.ToGive[0] = currencyItem(t, ScrapMetalName, "99")
	assert.Equal(t, "Team Captain", give[0].Name)
}

// Promotion of a bought listing is exercised end to end: a hat bought at its
// buy price becomes a sell listing carrying that price.
func TestOfferThenPromotion(t *testing.T) {
	sells, buys := evalCollections(t)
	item := testItem(t, "Team Captain", 13)

	offer := Offer{
		Partner:   "partner",
		ToGive:    []InventoryItem{currencyItem(t, KeyItemName, "1")},
		ToReceive: []InventoryItem{unusualInventory(t, "Team Captain", 13, "9")},
	}
	result, err := EvaluateOffer(offer, sells, buys, testRatio, EvalOptions{})
	require.NoError(t, err)
	require.Equal(t, ResponseAccept, result.Response)

	b, ok := buys.Get(item)
	require.True(t, ok)
	promoted, err := SellListingFromBuy(b.(*BuyListing), time.Now())
	require.NoError(t, err)
	assert.Equal(t, Price{Keys: 8}, promoted.PurchasePrice())
}
