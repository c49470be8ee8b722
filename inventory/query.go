package inventory

import (
	"sort"
	"strings"

	"supplyagent"
)

type SortKey string

const (
	SortByProductName  SortKey = "product_name"
	SortByClinicName   SortKey = "clinic_name"
	SortByCurrentCount SortKey = "current_count"
	SortByStatus       SortKey = "status"
	SortByLastUpdated  SortKey = "last_updated"
)

// Filter holds independent predicates combined with AND semantics. Zero
// values mean "no constraint".
type Filter struct {
	Search string               // case-insensitive substring of name or SKU
	Clinic string               // exact clinic name
	Status supplyagent.Severity // exact status
}

func (f Filter) matches(row supplyagent.InventoryItem) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		name := strings.ToLower(row.ProductName)
		sku := strings.ToLower(row.SKU)
		if !strings.Contains(name, q) && !strings.Contains(sku, q) {
			return false
		}
	}
	if f.Clinic != "" && row.ClinicName != f.Clinic {
		return false
	}
	if f.Status != "" && row.Status != f.Status {
		return false
	}
	return true
}

// Page is one fixed-size page of the filtered, sorted ledger.
type Page struct {
	Items      []supplyagent.InventoryItem
	PageIndex  int // 1-based, clamped into [1, PageCount]
	PageCount  int
	TotalItems int
}

// Query filters, sorts and paginates the ledger. The page index is clamped to
// the recomputed page count so it can never dangle past the end after a
// filter or sort change.
func (l *Ledger) Query(f Filter, key SortKey, descending bool, pageIndex, pageSize int) Page {
	rows := l.Rows()

	filtered := rows[:0]
	for _, row := range rows {
		if f.matches(row) {
			filtered = append(filtered, row)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if descending {
			return lessByKey(filtered[j], filtered[i], key)
		}
		return lessByKey(filtered[i], filtered[j], key)
	})

	if pageSize < 1 {
		pageSize = 1
	}
	pageCount := (len(filtered) + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}
	if pageIndex < 1 {
		pageIndex = 1
	}
	if pageIndex > pageCount {
		pageIndex = pageCount
	}

	start := (pageIndex - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Items:      filtered[start:end],
		PageIndex:  pageIndex,
		PageCount:  pageCount,
		TotalItems: len(filtered),
	}
}

// lessByKey orders string keys lexicographically and numeric keys
// numerically. Unknown keys fall back to product name.
func lessByKey(a, b supplyagent.InventoryItem, key SortKey) bool {
	switch key {
	case SortByClinicName:
		return a.ClinicName < b.ClinicName
	case SortByCurrentCount:
		return a.CurrentCount < b.CurrentCount
	case SortByStatus:
		return a.Status < b.Status
	case SortByLastUpdated:
		return a.LastUpdated.Before(b.LastUpdated)
	default:
		return a.ProductName < b.ProductName
	}
}
