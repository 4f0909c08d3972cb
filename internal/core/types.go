package core

import (
	"math"

	"github.com/jackc/pgx/v5/pgtype"
)

// FieldType is the value kind of a record column.
// It decides sort direction and how raw CSV cells are parsed.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

func (t FieldType) String() string {
	if t == FieldNumeric {
		return "numeric"
	}
	return "text"
}

// FieldSpec describes one known column of a BusinessRecord.
type FieldSpec struct {
	Name string    // Column header name, e.g. "annual_waste_tonnes"
	Type FieldType // Numeric columns use Number, text columns use Text

	Text   func(r *BusinessRecord) *pgtype.Text
	Number func(r *BusinessRecord) *pgtype.Float8
}

// Format renders the field of r for display and export.
func (f FieldSpec) Format(r *BusinessRecord) string {
	if f.Type == FieldNumeric {
		return FormatNumber(*f.Number(r))
	}
	return FormatText(*f.Text(r))
}

// Set parses raw into the field of r.
func (f FieldSpec) Set(r *BusinessRecord, raw string) {
	if f.Type == FieldNumeric {
		*f.Number(r) = ToFloat8(raw)
		return
	}
	*f.Text(r) = ToText(raw)
}

func textField(name string, get func(r *BusinessRecord) *pgtype.Text) FieldSpec {
	return FieldSpec{Name: name, Type: FieldText, Text: get}
}

func numericField(name string, get func(r *BusinessRecord) *pgtype.Float8) FieldSpec {
	return FieldSpec{Name: name, Type: FieldNumeric, Number: get}
}

// Fields is the record schema in canonical column order.
var Fields = []FieldSpec{
	numericField("business_id", func(r *BusinessRecord) *pgtype.Float8 { return &r.ID }),
	textField("name", func(r *BusinessRecord) *pgtype.Text { return &r.Name }),
	textField("naics_code", func(r *BusinessRecord) *pgtype.Text { return &r.NAICSCode }),
	textField("category", func(r *BusinessRecord) *pgtype.Text { return &r.Category }),
	textField("address", func(r *BusinessRecord) *pgtype.Text { return &r.Address }),
	textField("borough", func(r *BusinessRecord) *pgtype.Text { return &r.Borough }),
	numericField("latitude", func(r *BusinessRecord) *pgtype.Float8 { return &r.Latitude }),
	numericField("longitude", func(r *BusinessRecord) *pgtype.Float8 { return &r.Longitude }),
	numericField("employees", func(r *BusinessRecord) *pgtype.Float8 { return &r.Employees }),
	textField("waste_level", func(r *BusinessRecord) *pgtype.Text { return &r.WasteLevel }),
	numericField("annual_waste_tonnes", func(r *BusinessRecord) *pgtype.Float8 { return &r.AnnualWasteTonnes }),
	numericField("seasonal_q1_percent", func(r *BusinessRecord) *pgtype.Float8 { return &r.Seasonal[0] }),
	numericField("seasonal_q2_percent", func(r *BusinessRecord) *pgtype.Float8 { return &r.Seasonal[1] }),
	numericField("seasonal_q3_percent", func(r *BusinessRecord) *pgtype.Float8 { return &r.Seasonal[2] }),
	numericField("seasonal_q4_percent", func(r *BusinessRecord) *pgtype.Float8 { return &r.Seasonal[3] }),
	textField("peak_season", func(r *BusinessRecord) *pgtype.Text { return &r.PeakSeason }),
}

var fieldIndex = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// LookupField returns the schema entry for a column name.
func LookupField(name string) (FieldSpec, bool) {
	f, ok := fieldIndex[name]
	return f, ok
}

// CanonicalColumns returns the schema column names in order.
func CanonicalColumns() []string {
	cols := make([]string, len(Fields))
	for i, f := range Fields {
		cols[i] = f.Name
	}
	return cols
}

// ValueOf returns the display value of column for r.
// Known columns are formatted through the schema; others come from Extra.
// A column the record does not carry yields "".
func ValueOf(r BusinessRecord, column string) string {
	if f, ok := LookupField(column); ok {
		return f.Format(&r)
	}
	v, _ := r.extra(column)
	return v
}

// SetValue assigns a raw source cell to column on r.
func SetValue(r *BusinessRecord, column, raw string) {
	if f, ok := LookupField(column); ok {
		f.Set(r, raw)
		return
	}
	r.Extra = append(r.Extra, Attribute{Name: column, Value: ToText(raw).String})
}

// DropNonFinite marks NaN and infinite numeric fields of r as null, so values
// scanned from a database follow the same rule as parsed cells.
func DropNonFinite(r *BusinessRecord) {
	for _, f := range Fields {
		if f.Type != FieldNumeric {
			continue
		}
		if n := f.Number(r); n.Valid && (math.IsNaN(n.Float64) || math.IsInf(n.Float64, 0)) {
			*n = pgtype.Float8{}
		}
	}
}
