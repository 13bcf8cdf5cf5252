package options

import (
	"sort"
	"strings"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Sorter applies domain ordering to values before they become options.
type Sorter interface {
	Sort(values []schema.Value) []schema.Value
}

// SorterFunc adapts a function into a Sorter.
type SorterFunc func(values []schema.Value) []schema.Value

// Sort calls the underlying function.
func (fn SorterFunc) Sort(values []schema.Value) []schema.Value {
	return fn(values)
}

// KeepOrder leaves values in the order the server returned them.
var KeepOrder Sorter = SorterFunc(func(values []schema.Value) []schema.Value {
	return values
})

// SortByName orders values case-insensitively by display name.
var SortByName Sorter = SorterFunc(func(values []schema.Value) []schema.Value {
	sort.SliceStable(values, func(i, j int) bool {
		return strings.ToLower(values[i].DisplayName()) < strings.ToLower(values[j].DisplayName())
	})
	return values
})

// SortByPosition orders values by their numeric "position" attribute. Values
// without a position keep their relative order after positioned ones.
var SortByPosition Sorter = SorterFunc(func(values []schema.Value) []schema.Value {
	sort.SliceStable(values, func(i, j int) bool {
		pi, iok := position(values[i])
		pj, jok := position(values[j])
		switch {
		case iok && jok:
			return pi < pj
		case iok:
			return true
		default:
			return false
		}
	})
	return values
})

func position(value schema.Value) (float64, bool) {
	if value.Attributes == nil {
		return 0, false
	}
	switch v := value.Attributes["position"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
