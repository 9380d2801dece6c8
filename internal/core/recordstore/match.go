package recordstore

import (
	"fmt"
	"sort"
)

// Matches reports whether record satisfies every equality in filter.
func Matches(record Record, filter Filter) bool {
	for field, want := range filter {
		got, ok := record[field]
		if !ok {
			return false
		}
		if canonical(got) != canonical(want) {
			return false
		}
	}
	return true
}

// Apply merges patch into record. The id field is never overwritten.
func Apply(record, patch Record) {
	for k, v := range patch {
		if k == IDField {
			continue
		}
		record[k] = v
	}
}

// SortRecords orders records in place by order.Field. Records missing the field
// come first ascending and last descending. Ties keep insertion order.
func SortRecords(records []Record, order Order) {
	if order.Field == "" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, aok := records[i][order.Field]
		b, bok := records[j][order.Field]
		if !aok || !bok {
			if order.Desc {
				return aok && !bok
			}
			return !aok && bok
		}
		c := compare(a, b)
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
}

// canonical maps numerically equal values of different Go types to one key.
func canonical(v any) string {
	if f, ok := number(v); ok {
		return fmt.Sprintf("n:%g", f)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func compare(a, b any) int {
	fa, aok := number(a)
	fb, bok := number(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
