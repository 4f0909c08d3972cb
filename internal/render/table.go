package render

import (
	"strings"
	"sync"

	"github.com/JonMunkholm/agrimap/internal/core"
)

// TableColumn is a table header. Field is the sort key sent when the header
// is clicked.
type TableColumn struct {
	Label string `json:"label"`
	Field string `json:"field"`
}

// TableColumns lists the table headers in display order.
var TableColumns = []TableColumn{
	{"Business Name", "name"},
	{"Category", "category"},
	{"Borough", "borough"},
	{"Employees", "employees"},
	{"Waste Level", "waste_level"},
	{"Annual Waste (tonnes)", "annual_waste_tonnes"},
	{"Peak Season", "peak_season"},
}

// TableRow is one rendered business row.
type TableRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Borough     string `json:"borough"`
	Employees   string `json:"employees"`
	WasteLevel  string `json:"wasteLevel"`
	BadgeClass  string `json:"badgeClass"`
	AnnualWaste string `json:"annualWaste"`
	PeakSeason  string `json:"peakSeason"`
}

// NewTableRow projects r into a row.
func NewTableRow(r core.BusinessRecord) TableRow {
	return TableRow{
		ID:          core.FormatNumber(r.ID),
		Name:        core.FormatText(r.Name),
		Category:    core.FormatText(r.Category),
		Borough:     core.FormatText(r.Borough),
		Employees:   core.FormatNumber(r.Employees),
		WasteLevel:  core.FormatText(r.WasteLevel),
		BadgeClass:  BadgeClass(r.WasteLevel.String),
		AnnualWaste: core.FormatNumber(r.AnnualWasteTonnes),
		PeakSeason:  core.FormatText(r.PeakSeason),
	}
}

// BadgeClass returns the CSS classes for a waste level badge, e.g.
// "status status-high". Levels that are empty or not a clean class name are
// reduced to lowercase letters, digits and dashes; nothing usable left gives
// "status status-unknown".
func BadgeClass(level string) string {
	return "status status-" + slug(level)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, c := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}

// TableView holds the rows of the last render, in view order.
// It implements core.TableRenderer.
type TableView struct {
	mu   sync.RWMutex
	rows []TableRow
}

// NewTableView returns an empty table.
func NewTableView() *TableView {
	return &TableView{}
}

// RenderTable replaces every row with the records of v.
func (t *TableView) RenderTable(v core.View) {
	rows := make([]TableRow, v.Len())
	for i := range rows {
		rows[i] = NewTableRow(v.At(i))
	}

	t.mu.Lock()
	t.rows = rows
	t.mu.Unlock()
}

// Rows returns a copy of the current rows.
func (t *TableView) Rows() []TableRow {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]TableRow(nil), t.rows...)
}
