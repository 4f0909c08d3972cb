package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// BusinessRecord is one agrifood business with its location and waste profile.
// Fields left Valid=false were absent or unparseable in the source.
type BusinessRecord struct {
	ID                pgtype.Float8
	Name              pgtype.Text
	NAICSCode         pgtype.Text
	Category          pgtype.Text
	Address           pgtype.Text
	Borough           pgtype.Text
	Latitude          pgtype.Float8
	Longitude         pgtype.Float8
	Employees         pgtype.Float8
	WasteLevel        pgtype.Text
	AnnualWasteTonnes pgtype.Float8
	Seasonal          [4]pgtype.Float8 // Q1..Q4 percentages
	PeakSeason        pgtype.Text

	// Extra holds source columns the record schema does not know, in source order.
	Extra []Attribute
}

// Attribute is a raw name/value pair carried through from the source.
type Attribute struct {
	Name  string
	Value string
}

// CategoryKey returns the category used for filtering.
// A missing category is keyed as the empty string.
func (r BusinessRecord) CategoryKey() string {
	return r.Category.String
}

// HasCoordinates reports whether the record can be placed on the map.
// Zero is treated as missing, the same as an empty cell.
func (r BusinessRecord) HasCoordinates() bool {
	return r.Latitude.Valid && r.Longitude.Valid &&
		r.Latitude.Float64 != 0 && r.Longitude.Float64 != 0
}

// IsHighWaste reports whether the waste level is exactly "High".
func (r BusinessRecord) IsHighWaste() bool {
	return r.WasteLevel.Valid && r.WasteLevel.String == "High"
}

// AnnualWaste returns the annual waste in tonnes, zero when missing.
func (r BusinessRecord) AnnualWaste() float64 {
	if !r.AnnualWasteTonnes.Valid {
		return 0
	}
	return r.AnnualWasteTonnes.Float64
}

// extra returns the value of an unrecognized source column.
func (r BusinessRecord) extra(name string) (string, bool) {
	for _, a := range r.Extra {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ToText converts a raw cell to pgtype.Text.
// Surrounding whitespace and stray double quotes are removed; an empty cell is invalid.
func ToText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToFloat8 converts a raw cell to pgtype.Float8.
// Empty, non-numeric and non-finite input ("NaN", "Inf") is invalid rather
// than an error.
func ToFloat8(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float8{Valid: false}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// FormatNumber renders a number the way the dashboard shows it:
// integers without a decimal point, other values in shortest form.
// Invalid numbers render as the empty string.
func FormatNumber(f pgtype.Float8) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

// FormatText renders text, with invalid values as the empty string.
func FormatText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
