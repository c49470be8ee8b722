package inventory_test

import (
	"testing"
	"time"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"supplyagent"
	"supplyagent/inventory"
	"supplyagent/storage"
)

func testCatalog() storage.Catalog {
	return storage.Catalog{
		Clinics: []supplyagent.Clinic{
			{ID: "clinic-1", Name: "Downtown Clinic"},
			{ID: "clinic-2", Name: "Northside Clinic"},
		},
		Products: []supplyagent.Product{
			{ID: "prod-1", Name: "Gauze Pads 4x4", SKU: "GZ-4X4", MinThreshold: 50},
			{ID: "prod-2", Name: "Syringes 10ml", SKU: "SYR-10", MinThreshold: 100},
		},
		Inventory: []supplyagent.InventoryItem{
			{ID: "row-1", ProductID: "prod-1", ProductName: "Gauze Pads 4x4", SKU: "GZ-4X4",
				ClinicID: "clinic-1", ClinicName: "Downtown Clinic",
				CurrentCount: 120, MinThreshold: 50, Status: supplyagent.SeverityGreen},
			{ID: "row-2", ProductID: "prod-1", ProductName: "Gauze Pads 4x4", SKU: "GZ-4X4",
				ClinicID: "clinic-2", ClinicName: "Northside Clinic",
				CurrentCount: 30, MinThreshold: 50, Status: supplyagent.SeverityRed},
			{ID: "row-3", ProductID: "prod-2", ProductName: "Syringes 10ml", SKU: "SYR-10",
				ClinicID: "clinic-2", ClinicName: "Northside Clinic",
				CurrentCount: 5, MinThreshold: 100, Status: supplyagent.SeverityCritical},
		},
	}
}

func TestFind(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())

	row, ok := ledger.Find("prod-1", "clinic-2")
	must.True(t, ok)
	should.Equal(t, 30, row.CurrentCount)

	_, ok = ledger.Find("prod-2", "clinic-1")
	should.False(t, ok, "no row exists for this pairing")
}

func TestCommitScan(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())
	at := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	updated := ledger.CommitScan("prod-1", "clinic-2", 75, supplyagent.SeverityYellow, at)
	must.True(t, updated)

	row, ok := ledger.Find("prod-1", "clinic-2")
	must.True(t, ok)
	should.Equal(t, 75, row.CurrentCount)
	should.Equal(t, supplyagent.SeverityYellow, row.Status)
	should.Equal(t, at, row.LastUpdated)
}

func TestCommitScanNoRowIsNotCreated(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())

	updated := ledger.CommitScan("prod-2", "clinic-1", 10, supplyagent.SeverityGreen, time.Now())
	should.False(t, updated)
	should.Len(t, ledger.Rows(), 3, "rows are never created implicitly")
}

func TestWorstStatus(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())

	tests := []struct {
		name     string
		clinicID string
		want     supplyagent.Severity
	}{
		{name: "single green row", clinicID: "clinic-1", want: supplyagent.SeverityGreen},
		{name: "critical beats red", clinicID: "clinic-2", want: supplyagent.SeverityCritical},
		{name: "no rows is green", clinicID: "clinic-9", want: supplyagent.SeverityGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			should.Equal(t, tt.want, ledger.WorstStatus(tt.clinicID))
		})
	}
}

func TestWorstStatusReflectsCommits(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())
	must.Equal(t, supplyagent.SeverityGreen, ledger.WorstStatus("clinic-1"))

	ledger.CommitScan("prod-1", "clinic-1", 2, supplyagent.SeverityCritical, time.Now())
	should.Equal(t, supplyagent.SeverityCritical, ledger.WorstStatus("clinic-1"), "recomputed, not cached")
}

func TestCriticalRows(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())

	critical := ledger.CriticalRows()
	must.Len(t, critical, 1)
	should.Equal(t, "SYR-10", critical[0].SKU)
}

func TestStats(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())
	at := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	ledger.CommitScan("prod-1", "clinic-1", 120, supplyagent.SeverityGreen, at)

	stats := ledger.Stats()
	should.Equal(t, 2, stats.TotalClinics)
	should.Equal(t, 3, stats.TotalRows)
	should.Equal(t, 2, stats.BelowThreshold, "red and critical both count")
	should.Equal(t, 1, stats.CriticalItems)
	should.Equal(t, at, stats.LastUpdated)
}

func TestSnapshot(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())

	snapshot := ledger.Snapshot()
	must.Len(t, snapshot, 3)
	should.Equal(t, "Gauze Pads 4x4", snapshot[0].ProductName)
	should.Equal(t, "Downtown Clinic", snapshot[0].ClinicName)
	should.Equal(t, supplyagent.SeverityRed, snapshot[1].Status)
}

func TestRowsReturnsCopy(t *testing.T) {
	ledger := inventory.NewLedger(testCatalog())

	rows := ledger.Rows()
	rows[0].CurrentCount = -999

	fresh, ok := ledger.Find("prod-1", "clinic-1")
	must.True(t, ok)
	should.Equal(t, 120, fresh.CurrentCount, "mutating the copy must not touch the ledger")
}
