// Package export serializes the dashboard's filtered view as CSV.
//
// The format is deliberately minimal: a value is wrapped in double quotes only
// when it contains a comma, rows are joined with "\n" and there is no trailing
// newline. Missing values are written as empty cells.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/agrimap/internal/core"
)

const (
	// FileName is the download name offered to the browser.
	FileName = "montreal-agrifood-businesses.csv"

	// ContentType is the MIME type of the export.
	ContentType = "text/csv"
)

// ExportCSV renders v with the store's column order. An empty view yields "".
func ExportCSV(v core.View) string {
	if v.Len() == 0 {
		return ""
	}
	return CSV(v.Store().Columns(), v.Records())
}

// CSV renders a header row and one row per record. No records yields "".
func CSV(columns []string, records []core.BusinessRecord) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	writeRow(&b, columns)
	cells := make([]string, len(columns))
	for _, r := range records {
		for i, col := range columns {
			cells[i] = core.ValueOf(r, col)
		}
		b.WriteByte('\n')
		writeRow(&b, cells)
	}
	return b.String()
}

// WriteCSV writes ExportCSV(v) to w.
func WriteCSV(w io.Writer, v core.View) error {
	if _, err := io.WriteString(w, ExportCSV(v)); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ContentDisposition returns the attachment header value for the download.
func ContentDisposition() string {
	return fmt.Sprintf(`attachment; filename="%s"`, FileName)
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(c))
	}
}

// quote wraps values containing a comma. Embedded quotes are left as they are.
func quote(s string) string {
	if strings.Contains(s, ",") {
		return `"` + s + `"`
	}
	return s
}
