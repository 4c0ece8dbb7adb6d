package s3blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/unusualtrade/hatbot/internal/blob"
)

// uploadPartSize is the part size for the upload manager. Daily archive files
// are far smaller than this, so uploads go out as a single part, but the
// manager still handles the oversized ones without any special casing here.
const uploadPartSize int64 = 8 * 1024 * 1024

// Writer implements blob.Writer using an S3-compatible backend.
type Writer struct {
	uploader *manager.Uploader
	bucket   string
}

// NewWriter creates a Writer that uploads objects to the client's configured
// bucket.
func NewWriter(c *Client) *Writer {
	return &Writer{
		uploader: manager.NewUploader(c.s3, func(u *manager.Uploader) {
			u.PartSize = uploadPartSize
		}),
		bucket: c.bucket,
	}
}

// Put uploads one object through the S3 upload manager.
func (w *Writer) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(path),
		Body:        data,
		ContentType: aws.String(contentType),
	}

	if _, err := w.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("s3blob: upload object %s: %w", path, err)
	}
	return nil
}

var _ blob.Writer = (*Writer)(nil)
