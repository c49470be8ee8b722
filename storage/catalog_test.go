package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"supplyagent/storage"
)

const catalogJSON = `{
  "clinics": [
    {"id": "clinic-1", "name": "Downtown Clinic", "address": "1 Main St", "state": "MD"},
    {"id": "clinic-2", "name": "Northside Clinic", "address": "9 Oak Ave", "state": "MD"}
  ],
  "products": [
    {"id": "prod-1", "name": "Gauze Pads 4x4", "sku": "GZ-4X4", "min_threshold": 50, "max_threshold": 200}
  ],
  "inventory": [
    {"id": "row-1", "product_id": "prod-1", "product_name": "Gauze Pads 4x4", "sku": "GZ-4X4",
     "clinic_id": "clinic-1", "clinic_name": "Downtown Clinic",
     "current_count": 120, "min_threshold": 50, "status": "green"},
    {"id": "row-2", "product_id": "prod-1", "product_name": "Gauze Pads 4x4", "sku": "GZ-4X4",
     "clinic_id": "clinic-2", "clinic_name": "Northside Clinic",
     "current_count": 30, "min_threshold": 50, "status": "red"}
  ]
}`

func TestParseCatalog(t *testing.T) {
	catalog, err := storage.ParseCatalog([]byte(catalogJSON))
	must.NoError(t, err)
	should.Len(t, catalog.Clinics, 2)
	should.Len(t, catalog.Products, 1)
	should.Len(t, catalog.Inventory, 2)
	should.Equal(t, "GZ-4X4", catalog.Inventory[0].SKU)
}

func TestParseCatalogRejectsDuplicatePair(t *testing.T) {
	dup := `{
  "inventory": [
    {"product_id": "prod-1", "clinic_id": "clinic-1", "current_count": 10},
    {"product_id": "prod-1", "clinic_id": "clinic-1", "current_count": 20}
  ]
}`
	_, err := storage.ParseCatalog([]byte(dup))
	must.Error(t, err)
	should.Contains(t, err.Error(), "duplicate ledger row")
}

func TestParseCatalogMalformed(t *testing.T) {
	_, err := storage.ParseCatalog([]byte("not json"))
	should.Error(t, err)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	must.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0644))

	catalog, err := storage.LoadCatalog(context.Background(), storage.NewFileCatalogState(path))
	must.NoError(t, err)
	should.Len(t, catalog.Inventory, 2)
}

func TestLoadCatalogFileMissing(t *testing.T) {
	_, err := storage.LoadCatalog(context.Background(), storage.NewFileCatalogState("does/not/exist.json"))
	should.Error(t, err)
}

func TestLoadCatalogStateError(t *testing.T) {
	_, err := storage.LoadCatalog(context.Background(), storage.NewTestCatalogStateWithError())
	must.Error(t, err)
	should.Contains(t, err.Error(), "read catalog")
}
