package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuy(t *testing.T, name string, effectCode int) *BuyListing {
	t.Helper()
	b, err := NewBuyListing(testItem(t, name, effectCode), testCommunity(t, 10, 12))
	require.NoError(t, err)
	return b
}

func newTestSell(t *testing.T, name string, effectCode int) *SellListing {
	t.Helper()
	s, err := NewSellListing(testItem(t, name, effectCode), testCommunity(t, 10, 12), Price{Keys: 9}, time.Now(), "1")
	require.NoError(t, err)
	return s
}

func TestCollectionUpsertReplacesByIdentity(t *testing.T) {
	c := NewCollection()
	first := newTestBuy(t, "Team Captain", 13)
	first.SetPrice(&Price{Keys: 5})
	c.Upsert(first)

	second := newTestBuy(t, "Team Captain", 13)
	c.Upsert(second)

	assert.Equal(t, 1, c.Len())
	got, ok := c.Get(first.Item())
	require.True(t, ok)
	assert.Same(t, Listing(second), got)
}

func TestCollectionGetAndRemove(t *testing.T) {
	c := NewCollection()
	b := newTestBuy(t, "Team Captain", 13)
	c.Upsert(b)

	_, ok := c.Get(testItem(t, "Villain's Veil", 13))
	assert.False(t, ok)

	c.Remove(b.Item())
	assert.Zero(t, c.Len())
	c.Remove(b.Item()) // removing an absent identity is a no-op
}

func TestCollectionAllIsDeterministic(t *testing.T) {
	c := NewCollection()
	c.Upsert(newTestBuy(t, "Villain's Veil", 13))
	c.Upsert(newTestBuy(t, "Team Captain", 14))
	c.Upsert(newTestBuy(t, "Team Captain", 13))

	var names []string
	for _, l := range c.All() {
		names = append(names, l.Item().String())
	}
	assert.Equal(t, []string{
		"Burning Flames Team Captain",
		"Scorching Flames Team Captain",
		"Burning Flames Villain's Veil",
	}, names)
}

func TestCollectionOrdered(t *testing.T) {
	c := NewCollection()

	low := newTestBuy(t, "Villain's Veil", 13)
	one := 1
	low.SetPriority(&one)
	c.Upsert(low)

	high := newTestBuy(t, "Team Captain", 13)
	two := 2
	high.SetPriority(&two)
	c.Upsert(high)

	unset := newTestSell(t, "Killer Exclusive", 13)
	c.Upsert(unset)

	got := c.Ordered()
	require.Len(t, got, 3)
	assert.Same(t, Listing(low), got[0])
	assert.Same(t, Listing(high), got[1])
	assert.Same(t, Listing(unset), got[2])
}

func TestCollectionVisible(t *testing.T) {
	c := NewCollection()
	priced := newTestBuy(t, "Team Captain", 13)
	priced.SetPrice(&Price{Keys: 10})
	c.Upsert(priced)
	c.Upsert(newTestBuy(t, "Villain's Veil", 13))

	got := c.Visible()
	require.Len(t, got, 1)
	assert.Same(t, Listing(priced), got[0])
}

func TestCollectionCopyIsDeep(t *testing.T) {
	c := NewCollection()
	b := newTestBuy(t, "Team Captain", 13)
	b.SetPrice(&Price{Keys: 10})
	c.Upsert(b)

	cp := c.Copy()
	got, ok := cp.Get(b.Item())
	require.True(t, ok)
	got.SetPrice(&Price{Keys: 1})
	cp.Upsert(newTestBuy(t, "Villain's Veil", 13))

	assert.Equal(t, 1, c.Len())
	p, err := b.Price()
	require.NoError(t, err)
	assert.Equal(t, Price{Keys: 10}, p)
}
