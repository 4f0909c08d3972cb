package core

import (
	"errors"
	"testing"

	"golang.org/x/text/language"
)

func TestSorter_NumericDescending(t *testing.T) {
	store := mixedStore()
	s := NewSorter(language.English)

	for _, field := range []string{"employees", "annual_waste_tonnes", "business_id"} {
		t.Run(field, func(t *testing.T) {
			v, err := s.Sort(store.All(), field)
			if err != nil {
				t.Fatalf("Sort() error = %v", err)
			}
			if v.Len() != store.Len() {
				t.Fatalf("Len() = %d, want %d", v.Len(), store.Len())
			}

			spec, _ := LookupField(field)
			seenNull := false
			prev := 0.0
			for i := 0; i < v.Len(); i++ {
				r := v.At(i)
				n := *spec.Number(&r)
				if !n.Valid {
					seenNull = true
					continue
				}
				if seenNull {
					t.Fatalf("present value %v after a missing one", n.Float64)
				}
				if i > 0 && n.Float64 > prev {
					t.Errorf("position %d: %v > previous %v", i, n.Float64, prev)
				}
				prev = n.Float64
			}
		})
	}
}

func TestSorter_EmployeesOrder(t *testing.T) {
	v, err := NewSorter(language.English).Sort(mixedStore().All(), "employees")
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	// 12 (200), 11 (55), 10 (12), then the two without employees in load order.
	want := []float64{12, 11, 10, 13, 14}
	if got := ids(v); !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSorter_TextAscending(t *testing.T) {
	store := mixedStore()
	s := NewSorter(language.English)

	for _, field := range []string{"name", "borough", "category"} {
		t.Run(field, func(t *testing.T) {
			v, err := s.Sort(store.All(), field)
			if err != nil {
				t.Fatalf("Sort() error = %v", err)
			}
			spec, _ := LookupField(field)
			compare := s.collator()
			for i := 1; i < v.Len(); i++ {
				a, b := v.At(i-1), v.At(i)
				if compare(spec.Format(&a), spec.Format(&b)) > 0 {
					t.Errorf("%q sorts after %q", spec.Format(&a), spec.Format(&b))
				}
			}
		})
	}
}

func TestSorter_CollationIgnoresCaseAndAccents(t *testing.T) {
	v, err := NewSorter(language.English).Sort(mixedStore().All(), "name")
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	// "anonymous" sorts first despite the lower-case a; "Épicerie" sorts
	// among the E words rather than after "Pain".
	want := []float64{13, 10, 11, 14, 12}
	if got := ids(v); !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSorter_UnknownField(t *testing.T) {
	store := sampleStore()
	in := store.All()

	out, err := NewSorter(language.English).Sort(in, "colour")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Sort() error = %v, want ErrUnknownField", err)
	}
	if !equalIDs(ids(out), ids(in)) {
		t.Errorf("view changed on error: %v", ids(out))
	}
}

func TestSorter_DoesNotReorderInput(t *testing.T) {
	in := sampleStore().All()
	before := ids(in)

	if _, err := NewSorter(language.English).Sort(in, "annual_waste_tonnes"); err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if !equalIDs(ids(in), before) {
		t.Errorf("input view reordered: %v, want %v", ids(in), before)
	}
}

func TestSorter_TiesKeepOrder(t *testing.T) {
	// Records 1 and 4 both have 40 employees.
	v, err := NewSorter(language.English).Sort(sampleStore().All(), "employees")
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	want := []float64{2, 5, 3, 1, 4}
	if got := ids(v); !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestParseLocale(t *testing.T) {
	if got := ParseLocale("fr-CA"); got.String() != "fr-CA" {
		t.Errorf("ParseLocale(fr-CA) = %v", got)
	}
	if got := ParseLocale("not a tag!"); got.String() != language.English.String() {
		t.Errorf("ParseLocale(invalid) = %v, want en", got)
	}
}
