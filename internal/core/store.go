package core

// store.go holds the loaded dataset and the index-based views derived from it.
//
// The store is read-only after construction and may be shared by any number
// of controllers. A View never copies records: it is a list of indices into
// the store, in display order.

// Dataset is the raw result of a load: records plus the source column order.
type Dataset struct {
	Columns []string
	Records []BusinessRecord
}

// RecordStore owns the dataset for the lifetime of the process.
type RecordStore struct {
	columns    []string
	records    []BusinessRecord
	categories []string
}

// NewRecordStore copies ds into a new store.
// If ds carries no column order, the canonical schema order is used.
func NewRecordStore(ds *Dataset) *RecordStore {
	s := &RecordStore{}
	if ds == nil {
		s.columns = CanonicalColumns()
		return s
	}

	s.columns = append([]string(nil), ds.Columns...)
	if len(s.columns) == 0 {
		s.columns = CanonicalColumns()
	}
	s.records = append([]BusinessRecord(nil), ds.Records...)

	seen := make(map[string]bool)
	for _, r := range s.records {
		key := r.CategoryKey()
		if !seen[key] {
			seen[key] = true
			s.categories = append(s.categories, key)
		}
	}
	return s
}

// Len returns the dataset size.
func (s *RecordStore) Len() int { return len(s.records) }

// Record returns the record at dataset position i.
func (s *RecordStore) Record(i int) BusinessRecord { return s.records[i] }

// Columns returns the export column order.
func (s *RecordStore) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Categories returns the distinct categories in first-seen order.
func (s *RecordStore) Categories() []string {
	return append([]string(nil), s.categories...)
}

// All returns a view over the whole dataset in load order.
func (s *RecordStore) All() View {
	idx := make([]int, len(s.records))
	for i := range idx {
		idx[i] = i
	}
	return View{store: s, idx: idx}
}

// View is an ordered selection of records from a store.
// Views are values; operations that reorder or filter return a new View.
type View struct {
	store *RecordStore
	idx   []int
}

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.idx) }

// At returns the i-th record in view order.
func (v View) At(i int) BusinessRecord { return v.store.records[v.idx[i]] }

// Store returns the store the view selects from.
func (v View) Store() *RecordStore { return v.store }

// Indices returns the dataset positions of the view's records, in view order.
func (v View) Indices() []int {
	return append([]int(nil), v.idx...)
}

// Records copies the view's records out in view order.
func (v View) Records() []BusinessRecord {
	out := make([]BusinessRecord, len(v.idx))
	for i, j := range v.idx {
		out[i] = v.store.records[j]
	}
	return out
}

// TotalWaste sums annual waste over the view, counting missing values as zero.
func (v View) TotalWaste() float64 {
	var sum float64
	for _, j := range v.idx {
		sum += v.store.records[j].AnnualWaste()
	}
	return sum
}
