// Package dataset loads business records for the dashboard.
//
// A [Source] produces a [core.Dataset] from an HTTP endpoint, a local file or
// PostgreSQL. [LoadWithFallback] never fails: when the source cannot be read
// the built-in five-record sample is returned instead.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/agrimap/internal/core"
)

var (
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidCSV wraps parser errors.
	ErrInvalidCSV = errors.New("invalid csv")
)

// ParseCSV reads a header row and data rows into a dataset.
//
// Known numeric columns are parsed as floats; empty or unparseable cells
// become null. Text cells are trimmed. Rows shorter than the header leave the
// missing columns null, and blank lines are skipped. Columns the record
// schema does not define are kept on each record in header order.
func ParseCSV(r io.Reader) (*core.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidCSV, err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	ds := &core.Dataset{Columns: columns}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		if isBlank(row) {
			continue
		}

		var rec core.BusinessRecord
		for i, col := range columns {
			raw := ""
			if i < len(row) {
				raw = row[i]
			}
			core.SetValue(&rec, col, raw)
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

// isBlank reports whether a row holds nothing but whitespace.
func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
