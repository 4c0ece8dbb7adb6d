// Package local is the directory-backed blob writer, the default archive
// target when no object store is configured.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/unusualtrade/hatbot/internal/blob"
)

// Writer stores objects as files under a root directory, one file per key.
type Writer struct {
	root string
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("local: empty archive directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local: create archive directory: %w", err)
	}
	return &Writer{root: dir}, nil
}

// Put writes the object to root/path. The content type is ignored; the file
// extension carries the format.
func (w *Writer) Put(ctx context.Context, path string, data io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(w.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("local: create object directory: %w", err)
	}

	body, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("local: read object body: %w", err)
	}
	if err := os.WriteFile(full, body, 0o644); err != nil {
		return fmt.Errorf("local: write object %s: %w", path, err)
	}
	return nil
}

var _ blob.Writer = (*Writer)(nil)
