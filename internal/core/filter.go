package core

import (
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/unicode/norm"
)

// CategorySet is the set of categories currently enabled.
// Sets are treated as values: Toggle returns a modified copy.
type CategorySet map[string]struct{}

// NewCategorySet returns a set holding every given category.
func NewCategorySet(categories ...string) CategorySet {
	s := make(CategorySet, len(categories))
	for _, c := range categories {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether c is enabled.
func (s CategorySet) Has(c string) bool {
	_, ok := s[c]
	return ok
}

// Toggle returns a copy of s with the membership of c flipped.
func (s CategorySet) Toggle(c string) CategorySet {
	out := make(CategorySet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	if _, ok := out[c]; ok {
		delete(out, c)
	} else {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the members in byte order.
func (s CategorySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Filter is the pair of user-controlled inputs that derive the filtered view.
type Filter struct {
	Active CategorySet
	Search string
}

// NewFilter enables every category and clears the search term.
func NewFilter(categories []string) Filter {
	return Filter{Active: NewCategorySet(categories...)}
}

// ToggleCategory returns f with category's membership flipped.
func (f Filter) ToggleCategory(category string) Filter {
	return Filter{Active: f.Active.Toggle(category), Search: f.Search}
}

// WithSearch returns f with the search term replaced.
func (f Filter) WithSearch(term string) Filter {
	return Filter{Active: f.Active, Search: term}
}

// Apply derives the filtered view from store, in dataset order.
// An empty category set yields an empty view.
func (f Filter) Apply(store *RecordStore) View {
	v := View{store: store, idx: []int{}}
	if len(f.Active) == 0 {
		return v
	}

	needle := foldSearch(f.Search)
	for i, r := range store.records {
		if f.matches(r, needle) {
			v.idx = append(v.idx, i)
		}
	}
	return v
}

// matches reports whether r belongs in the view; needle is the folded search term.
func (f Filter) matches(r BusinessRecord, needle string) bool {
	if !f.Active.Has(r.CategoryKey()) {
		return false
	}
	return needle == "" || matchesSearch(r, needle)
}

// foldSearch prepares a search term for matching.
// A term made only of whitespace disables the search.
func foldSearch(term string) string {
	if strings.TrimSpace(term) == "" {
		return ""
	}
	return fold(term)
}

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

func matchesSearch(r BusinessRecord, needle string) bool {
	return containsFolded(r.Name, needle) ||
		containsFolded(r.Address, needle) ||
		containsFolded(r.Borough, needle)
}

func containsFolded(t pgtype.Text, needle string) bool {
	if !t.Valid {
		return false
	}
	return strings.Contains(fold(t.String), needle)
}
