package inventory

import (
	"sync"

	"supplyagent"
)

// DefaultHistoryLimit is how many recent scans the operator can see.
const DefaultHistoryLimit = 5

// ScanHistory is the bounded, newest-first record of validated scans. Older
// entries are dropped, not persisted.
type ScanHistory struct {
	mu      sync.Mutex
	limit   int
	records []supplyagent.ScanRecord
}

func NewScanHistory(limit int) *ScanHistory {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &ScanHistory{limit: limit}
}

// Add prepends a record and trims the history to its limit.
func (h *ScanHistory) Add(record supplyagent.ScanRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append([]supplyagent.ScanRecord{record}, h.records...)
	if len(h.records) > h.limit {
		h.records = h.records[:h.limit]
	}
}

// Records returns a copy of the history, newest first.
func (h *ScanHistory) Records() []supplyagent.ScanRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]supplyagent.ScanRecord, len(h.records))
	copy(out, h.records)
	return out
}

func (h *ScanHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}
