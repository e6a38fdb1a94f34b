package grid

import (
	"sort"
	"strconv"

	"isolateledger/pkg/domain"
)

// SortRows orders rows by one column, stable for ties so insertion order
// survives among equal values. Number columns compare numerically when both
// cells parse; everything else compares as strings.
func SortRows(records []domain.Record, col Column, descending bool) []domain.Record {
	out := append([]domain.Record(nil), records...)
	less := func(i, j int) bool {
		a, b := CellValue(out[i], col), CellValue(out[j], col)
		if col.Kind == domain.KindNumber {
			fa, errA := strconv.ParseFloat(a, 64)
			fb, errB := strconv.ParseFloat(b, 64)
			if errA == nil && errB == nil {
				if descending {
					return fa > fb
				}
				return fa < fb
			}
		}
		if descending {
			return a > b
		}
		return a < b
	}
	sort.SliceStable(out, less)
	return out
}
