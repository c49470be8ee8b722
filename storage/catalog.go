// Package storage loads the catalog seed the ledger is bootstrapped from.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"supplyagent"
)

type CatalogState interface {
	Load(ctx context.Context) ([]byte, error)
}

// Catalog is the bootstrap artifact: clinic sites, the product catalog and
// the initial ledger rows.
type Catalog struct {
	Clinics   []supplyagent.Clinic        `json:"clinics"`
	Products  []supplyagent.Product       `json:"products"`
	Inventory []supplyagent.InventoryItem `json:"inventory"`
}

// ParseCatalog decodes a catalog artifact and rejects duplicate
// product/clinic pairings, since the ledger holds exactly one row per pair.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(c.Inventory))
	for _, item := range c.Inventory {
		key := item.ProductID + "/" + item.ClinicID
		if seen[key] {
			return Catalog{}, fmt.Errorf("duplicate ledger row for product %s at clinic %s", item.ProductID, item.ClinicID)
		}
		seen[key] = true
	}
	return c, nil
}

// LoadCatalog reads and parses a catalog from any state backend.
func LoadCatalog(ctx context.Context, state CatalogState) (Catalog, error) {
	data, err := state.Load(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// TestCatalogState is a simple in-memory implementation for testing.
type TestCatalogState struct {
	data []byte
	err  error
}

func NewTestCatalogState(data []byte) *TestCatalogState {
	return &TestCatalogState{data: data}
}

func NewTestCatalogStateWithError() *TestCatalogState {
	return &TestCatalogState{err: errors.New("not found")}
}

func (t *TestCatalogState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}
