// Package inventory holds the authoritative per-product-per-clinic stock
// ledger and the read-only aggregation views over it.
package inventory

import (
	"sync"
	"time"

	"supplyagent"
	"supplyagent/storage"
)

// SnapshotRow is one ledger row flattened for the Order Intelligence Agent.
type SnapshotRow struct {
	ProductName  string               `json:"product_name"`
	SKU          string               `json:"sku"`
	ClinicName   string               `json:"clinic_name"`
	CurrentCount int                  `json:"current_count"`
	MinThreshold int                  `json:"min_threshold"`
	Status       supplyagent.Severity `json:"status"`
}

// Stats is the dashboard rollup over the ledger.
type Stats struct {
	TotalClinics   int
	TotalRows      int
	BelowThreshold int
	CriticalItems  int
	LastUpdated    time.Time
}

// Ledger owns the stock rows. Rows are created only from the catalog seed and
// mutated only by a committed scan round trip; the views read it and never
// write.
type Ledger struct {
	mu   sync.Mutex
	rows []supplyagent.InventoryItem
}

// NewLedger seeds a ledger from a parsed catalog.
func NewLedger(catalog storage.Catalog) *Ledger {
	rows := make([]supplyagent.InventoryItem, len(catalog.Inventory))
	copy(rows, catalog.Inventory)
	return &Ledger{rows: rows}
}

// Find returns the single row for the product/clinic pair, if it exists.
func (l *Ledger) Find(productID, clinicID string) (supplyagent.InventoryItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, row := range l.rows {
		if row.ProductID == productID && row.ClinicID == clinicID {
			return row, true
		}
	}
	return supplyagent.InventoryItem{}, false
}

// CommitScan overwrites the count, status and timestamp of the matching row.
// It reports whether a row matched; no row is ever created implicitly.
func (l *Ledger) CommitScan(productID, clinicID string, count int, status supplyagent.Severity, at time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.rows {
		if l.rows[i].ProductID == productID && l.rows[i].ClinicID == clinicID {
			l.rows[i].CurrentCount = count
			l.rows[i].Status = status
			l.rows[i].LastUpdated = at
			return true
		}
	}
	return false
}

// Snapshot flattens every row for an analysis request.
func (l *Ledger) Snapshot() []SnapshotRow {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]SnapshotRow, 0, len(l.rows))
	for _, row := range l.rows {
		out = append(out, SnapshotRow{
			ProductName:  row.ProductName,
			SKU:          row.SKU,
			ClinicName:   row.ClinicName,
			CurrentCount: row.CurrentCount,
			MinThreshold: row.MinThreshold,
			Status:       row.Status,
		})
	}
	return out
}

// Rows returns a copy of every ledger row.
func (l *Ledger) Rows() []supplyagent.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]supplyagent.InventoryItem, len(l.rows))
	copy(out, l.rows)
	return out
}

// WorstStatus returns the most severe status among the clinic's rows under
// the order critical > red > yellow > green. A clinic with no rows is green.
// Recomputed on every call, never cached.
func (l *Ledger) WorstStatus(clinicID string) supplyagent.Severity {
	l.mu.Lock()
	defer l.mu.Unlock()

	statuses := make([]supplyagent.Severity, 0, len(l.rows))
	for _, row := range l.rows {
		if row.ClinicID == clinicID {
			statuses = append(statuses, row.Status)
		}
	}
	return supplyagent.WorstSeverity(statuses)
}

// CriticalRows returns every row currently at critical severity.
func (l *Ledger) CriticalRows() []supplyagent.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []supplyagent.InventoryItem
	for _, row := range l.rows {
		if row.Status == supplyagent.SeverityCritical {
			out = append(out, row)
		}
	}
	return out
}

// Stats computes the dashboard rollup.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	clinics := make(map[string]bool)
	s := Stats{TotalRows: len(l.rows)}
	for _, row := range l.rows {
		clinics[row.ClinicID] = true
		switch row.Status {
		case supplyagent.SeverityCritical:
			s.CriticalItems++
			s.BelowThreshold++
		case supplyagent.SeverityRed:
			s.BelowThreshold++
		}
		if row.LastUpdated.After(s.LastUpdated) {
			s.LastUpdated = row.LastUpdated
		}
	}
	s.TotalClinics = len(clinics)
	return s
}
