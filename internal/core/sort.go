package core

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter orders views by a single column.
//
// Numeric columns sort descending and text columns sort ascending under the
// configured locale's collation. There is no secondary key; ties keep their
// current relative order.
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a sorter collating text for tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// ParseLocale parses a BCP 47 tag, falling back to English on error.
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// Sort returns v reordered by field.
// An unknown field returns ErrUnknownField and v unchanged.
func (s *Sorter) Sort(v View, field string) (View, error) {
	spec, ok := LookupField(field)
	if !ok {
		return v, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	idx := v.Indices()
	records := v.store.records

	if spec.Type == FieldNumeric {
		sort.SliceStable(idx, func(i, j int) bool {
			a := *spec.Number(&records[idx[i]])
			b := *spec.Number(&records[idx[j]])
			switch {
			case !a.Valid:
				return false
			case !b.Valid:
				return true
			default:
				return a.Float64 > b.Float64
			}
		})
		return View{store: v.store, idx: idx}, nil
	}

	// Collators keep internal buffers, so each sort gets its own.
	compare := s.collator()
	sort.SliceStable(idx, func(i, j int) bool {
		a := spec.Format(&records[idx[i]])
		b := spec.Format(&records[idx[j]])
		return compare(a, b) < 0
	})
	return View{store: v.store, idx: idx}, nil
}

// collator returns a comparison function for the sorter's locale.
func (s *Sorter) collator() func(a, b string) int {
	return collate.New(s.tag).CompareString
}
