// Package blob defines the object-storage surface the archive job writes
// through. The s3 subpackage backs it with an S3-compatible store; the local
// subpackage backs it with a plain directory.
package blob

import (
	"context"
	"io"
)

// Writer stores one named object per call.
type Writer interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
