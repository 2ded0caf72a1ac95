// Package console implements the administrative console engine: client-side
// sorting and selection, form drafting, debounced search, session persistence
// and the view state machine. It holds no network code of its own; all I/O
// goes through the gateway.
package console

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"osiedle/internal/schema"
)

// SortDirection orders a column ascending or descending.
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

// SortConfig is the active column ordering. The zero Key means "no sort".
type SortConfig struct {
	Key       string
	Direction SortDirection
}

// Toggle applies a header click: a new column starts ascending, a repeated
// click flips the direction.
func (s SortConfig) Toggle(key string) SortConfig {
	if s.Key == key {
		if s.Direction == SortAsc {
			return SortConfig{Key: key, Direction: SortDesc}
		}
		return SortConfig{Key: key, Direction: SortAsc}
	}
	return SortConfig{Key: key, Direction: SortAsc}
}

// collator compares strings with Polish collation rules so names with
// diacritics order the way residents expect.
var collator = collate.New(language.Polish)

// SortRecords returns a new slice ordered by cfg. The sort is stable: equal
// values keep their input order. Numbers compare numerically when both sides
// are numeric, otherwise string representations compare under Polish
// collation. Nil values order before everything ascending (and therefore
// after everything descending).
func SortRecords(records []*schema.Record, cfg SortConfig) []*schema.Record {
	out := make([]*schema.Record, len(records))
	copy(out, records)
	if cfg.Key == "" {
		return out
	}

	mult := 1
	if cfg.Direction == SortDesc {
		mult = -1
	}

	sort.SliceStable(out, func(i, j int) bool {
		return compareValues(out[i], out[j], cfg.Key)*mult < 0
	})
	return out
}

func compareValues(a, b *schema.Record, key string) int {
	va, _ := a.Get(key)
	vb, _ := b.Get(key)

	switch {
	case va == nil && vb == nil:
		return 0
	case va == nil:
		return -1
	case vb == nil:
		return 1
	}

	fa, aNum := va.(float64)
	fb, bNum := vb.(float64)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	return collator.CompareString(a.StringValue(key), b.StringValue(key))
}
