package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriceRange(t *testing.T) {
	r, err := NewPriceRange(Price{Keys: 10}, Price{Keys: 12}, testRatio)
	require.NoError(t, err)
	assert.Equal(t, Price{Keys: 10}, r.Lower)
	assert.Equal(t, Price{Keys: 11}, r.Middle)
	assert.Equal(t, Price{Keys: 12}, r.Upper)
}

func TestNewPriceRangeSwapsBounds(t *testing.T) {
	r, err := NewPriceRange(Price{Keys: 12}, Price{Keys: 10}, testRatio)
	require.NoError(t, err)
	assert.Equal(t, Price{Keys: 10}, r.Lower)
	assert.Equal(t, Price{Keys: 12}, r.Upper)
}

func TestPointRange(t *testing.T) {
	p := Price{Keys: 5, Refined: 3}
	r := PointRange(p)
	assert.Equal(t, p, r.Lower)
	assert.Equal(t, p, r.Middle)
	assert.Equal(t, p, r.Upper)
}

func TestPriceRangeSpread(t *testing.T) {
	r, err := NewPriceRange(Price{Keys: 10}, Price{Keys: 12, Refined: 10}, testRatio)
	require.NoError(t, err)
	spread, err := r.Spread(testRatio)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, spread, 1e-9)
}

func TestPriceRangeString(t *testing.T) {
	assert.Equal(t, "5 keys, 0 refined", PointRange(Price{Keys: 5}).String())

	r, err := NewPriceRange(Price{Keys: 1}, Price{Keys: 2}, testRatio)
	require.NoError(t, err)
	assert.Equal(t, "1 keys, 0 refined to 2 keys, 0 refined", r.String())
}
