// internal/core/services/ordering.go
package services

import (
	"bytes"
	"slices"

	"github.com/ammerola/lot-allocator/internal/core/domain"
)

// recordOrder compares two records; negative means a is consumed first.
type recordOrder func(a, b domain.InventoryRecord) int

// byLotID is the secondary key for every strategy so plans are reproducible.
func byLotID(a, b domain.InventoryRecord) int {
	return bytes.Compare(a.LotID[:], b.LotID[:])
}

// oldestFirst orders records by lot creation time.
func oldestFirst(a, b domain.InventoryRecord) int {
	if c := a.LotCreatedAt.Compare(b.LotCreatedAt); c != 0 {
		return c
	}
	return byLotID(a, b)
}

// soonestExpiryFirst orders records by expiry date. A nil expiry never
// expires and sorts after every dated lot, whatever its creation time.
func soonestExpiryFirst(a, b domain.InventoryRecord) int {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate == nil:
		return byLotID(a, b)
	case a.ExpiryDate == nil:
		return 1
	case b.ExpiryDate == nil:
		return -1
	}
	if c := a.ExpiryDate.Compare(*b.ExpiryDate); c != 0 {
		return c
	}
	return byLotID(a, b)
}

// sortedCopy returns the records with stock, ordered by cmp. The input
// slice is left untouched.
func sortedCopy(records []domain.InventoryRecord, cmp recordOrder) []domain.InventoryRecord {
	out := make([]domain.InventoryRecord, 0, len(records))
	for _, r := range records {
		if r.HasStock() {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, cmp)
	return out
}
