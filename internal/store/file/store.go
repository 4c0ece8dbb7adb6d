// Package file persists bot snapshots as JSON on local disk.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/unusualtrade/hatbot/internal/bot"
	"github.com/unusualtrade/hatbot/internal/economy"
)

// Store writes snapshots to one JSON file. Saves go through a temp file and
// a rename, so a crash mid-write never leaves a truncated snapshot behind.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store at path, creating parent directories as needed.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("file: empty snapshot path: %w", economy.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file: create snapshot directory: %w", err)
	}
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "store")),
	}, nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Save atomically replaces the stored snapshot.
func (s *Store) Save(snap *bot.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("file: save nil snapshot: %w", economy.ErrInvalidArgument)
	}
	data, err := json.MarshalIndent(snap, "", "\t")
	if err != nil {
		return fmt.Errorf("file: encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("file: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("file: replace snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved",
		slog.String("path", s.path),
		slog.Int("hats", len(snap.Hats)),
		slog.Int("buy_listings", len(snap.Buys)),
	)
	return nil
}

// Load reads the stored snapshot. A missing file reports ErrNotFound, which
// callers treat as a fresh start.
func (s *Store) Load() (*bot.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file: snapshot %s: %w", s.path, economy.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("file: read snapshot: %w", err)
	}

	var snap bot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("file: decode snapshot: %w", err)
	}
	return &snap, nil
}
