package records

import (
	"sync"
	"time"
)

// Journal is the in-memory buffer of offer records awaiting archival. It is
// safe for concurrent use: the offer loop appends while the archive job
// drains.
type Journal struct {
	mu      sync.Mutex
	records []OfferRecord
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append adds a record to the journal.
func (j *Journal) Append(r OfferRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, r)
}

// Len returns the number of buffered records.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.records)
}

// DrainBefore removes and returns every record evaluated before the cutoff,
// oldest first. Records the archive upload then fails on are lost; the
// caller re-appends them if it wants retry semantics.
func (j *Journal) DrainBefore(cutoff time.Time) []OfferRecord {
	j.mu.Lock()
	defer j.mu.Unlock()

	var drained, kept []OfferRecord
	for _, r := range j.records {
		if r.EvaluatedAt.Before(cutoff) {
			drained = append(drained, r)
		} else {
			kept = append(kept, r)
		}
	}
	j.records = kept
	return drained
}

// Requeue puts drained records back, used when an archive upload fails.
func (j *Journal) Requeue(records []OfferRecord) {
	if len(records) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(records, j.records...)
}
