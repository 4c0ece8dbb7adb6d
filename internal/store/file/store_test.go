package file

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unusualtrade/hatbot/internal/bot"
	"github.com/unusualtrade/hatbot/internal/economy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSnapshot(t *testing.T) *bot.Snapshot {
	t.Helper()
	effect, err := economy.EffectForCode(13)
	require.NoError(t, err)
	item, err := economy.NewItem("Team Captain", economy.QualityUnusual, effect)
	require.NoError(t, err)

	middle, err := economy.NewPrice(110, 0)
	require.NoError(t, err)
	community, err := economy.NewPriceRange(middle, middle, 612)
	require.NoError(t, err)

	purchase, err := economy.NewPrice(55, 0)
	require.NoError(t, err)
	hat, err := economy.NewSellListing(item, community, purchase, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "1001")
	require.NoError(t, err)

	return &bot.Snapshot{AccountID: "76561198000000001", Hats: []*economy.SellListing{hat}}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "bot.json")
	s, err := NewStore(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Save(testSnapshot(t)))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "76561198000000001", loaded.AccountID)
	require.Len(t, loaded.Hats, 1)
	assert.Equal(t, "Team Captain", loaded.Hats[0].Item().Name)
	assert.Equal(t, "1001", loaded.Hats[0].AssetID())
	assert.Empty(t, loaded.Buys)
}

func TestLoadMissingSnapshot(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "bot.json"), testLogger())
	require.NoError(t, err)

	_, err = s.Load()
	assert.ErrorIs(t, err, economy.ErrNotFound)
}

func TestLoadRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	s, err := NewStore(path, testLogger())
	require.NoError(t, err)
	_, err = s.Load()
	assert.Error(t, err)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.json")
	s, err := NewStore(path, testLogger())
	require.NoError(t, err)
	require.NoError(t, s.Save(testSnapshot(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bot.json", entries[0].Name())
}

func TestNewStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewStore("", testLogger())
	assert.ErrorIs(t, err, economy.ErrInvalidArgument)
}