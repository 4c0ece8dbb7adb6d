package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/unusualtrade/hatbot/internal/blob"
	"github.com/unusualtrade/hatbot/internal/records"
)

// Archiver flushes journaled offer records to blob storage as JSONL, one
// object per calendar day. On upload failure the drained records go back
// into the journal for the next run.
type Archiver struct {
	writer  blob.Writer
	journal *records.Journal
	logger  *slog.Logger
}

// NewArchiver creates an Archiver flushing the given journal through writer.
func NewArchiver(writer blob.Writer, journal *records.Journal, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer:  writer,
		journal: journal,
		logger:  logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveOffers drains every record evaluated before the cutoff and uploads
// them to archive/offers/YYYY-MM-DD.jsonl. It returns the number of records
// archived.
func (a *Archiver) ArchiveOffers(ctx context.Context, before time.Time) (int64, error) {
	drained := a.journal.DrainBefore(before)
	if len(drained) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(drained)
	if err != nil {
		a.journal.Requeue(drained)
		return 0, fmt.Errorf("s3blob: archive offers marshal: %w", err)
	}

	path := archivePath("offers", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		a.journal.Requeue(drained)
		return 0, fmt.Errorf("s3blob: archive offers upload: %w", err)
	}

	count := int64(len(drained))
	a.logger.Info("offer records archived",
		slog.String("path", path),
		slog.Int64("count", count),
	)
	return count, nil
}

// archivePath builds the object key for an archive file, partitioned by the
// calendar day of the cutoff time.
//
//	archive/offers/2026-08-29.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.UTC().Format("2006-01-02"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](recs []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
