package inventory_test

import (
	"fmt"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"supplyagent"
	"supplyagent/inventory"
)

func TestScanHistoryNewestFirst(t *testing.T) {
	history := inventory.NewScanHistory(5)

	history.Add(supplyagent.ScanRecord{ID: "scan-1"})
	history.Add(supplyagent.ScanRecord{ID: "scan-2"})
	history.Add(supplyagent.ScanRecord{ID: "scan-3"})

	records := history.Records()
	must.Len(t, records, 3)
	should.Equal(t, "scan-3", records[0].ID)
	should.Equal(t, "scan-1", records[2].ID)
}

func TestScanHistoryBounded(t *testing.T) {
	history := inventory.NewScanHistory(5)

	for i := 1; i <= 8; i++ {
		history.Add(supplyagent.ScanRecord{ID: fmt.Sprintf("scan-%d", i)})
	}

	records := history.Records()
	must.Len(t, records, 5)
	should.Equal(t, "scan-8", records[0].ID)
	should.Equal(t, "scan-4", records[4].ID, "oldest entries fall off")
	should.Equal(t, 5, history.Len())
}

func TestScanHistoryDefaultLimit(t *testing.T) {
	history := inventory.NewScanHistory(0)

	for i := 0; i < 10; i++ {
		history.Add(supplyagent.ScanRecord{})
	}
	should.Equal(t, inventory.DefaultHistoryLimit, history.Len())
}

func TestScanHistoryRecordsReturnsCopy(t *testing.T) {
	history := inventory.NewScanHistory(5)
	history.Add(supplyagent.ScanRecord{ID: "scan-1"})

	records := history.Records()
	records[0].ID = "mutated"

	should.Equal(t, "scan-1", history.Records()[0].ID)
}
