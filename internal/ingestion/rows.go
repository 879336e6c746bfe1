// Package ingestion reads named demand rows from CSV.
package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"controller-sizer/internal/domain"
)

// TemplateColumns is the column order of a demand file.
var TemplateColumns = []string{
	domain.ColumnSystemName,
	string(domain.KindBO),
	string(domain.KindBI),
	string(domain.KindUI),
	string(domain.KindAO),
	string(domain.KindAI),
	string(domain.KindPressure),
}

// positional maps a header-less column index to its point kind.
var positional = []domain.PointKind{
	domain.KindBO, domain.KindBI, domain.KindUI, domain.KindAO, domain.KindAI, domain.KindPressure,
}

// ErrNoRows is returned for a file without any data rows.
var ErrNoRows = errors.New("no demand rows")

// ReadRows parses demand rows. The header is optional. With a header,
// columns are matched by name, case-insensitively, and unknown columns are
// ignored; without one, TemplateColumns order applies. Blank cells count
// as zero and blank lines are skipped. A row without a name is called
// "Row N". Counts must be non-negative integers.
func ReadRows(r io.Reader) ([]domain.DemandRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read demand csv: %w", err)
	}
	records = dropBlank(records)
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	nameCol := 0
	kindCols := make(map[domain.PointKind]int, len(positional))
	for i, k := range positional {
		kindCols[k] = i + 1
	}

	if isHeader(records[0]) {
		nameCol, kindCols, err = mapHeader(records[0])
		if err != nil {
			return nil, err
		}
		records = records[1:]
		if len(records) == 0 {
			return nil, ErrNoRows
		}
	}

	rows := make([]domain.DemandRow, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(cell(rec, nameCol))
		if name == "" {
			name = fmt.Sprintf("Row %d", i+1)
		}

		var d domain.PointDemand
		for _, kind := range positional {
			col, ok := kindCols[kind]
			if !ok {
				continue
			}
			n, err := parseCount(cell(rec, col))
			if err != nil {
				return nil, &domain.RowError{Row: name, Err: fmt.Errorf("%w: column %s: %v", domain.ErrInvalidDemand, kind, err)}
			}
			d = d.Set(kind, n)
		}
		rows = append(rows, domain.DemandRow{Name: name, Demand: d})
	}
	return rows, nil
}

// WriteTemplate writes an empty demand file containing only the header.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TemplateColumns); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteRows writes rows in template layout, header included.
func WriteRows(w io.Writer, rows []domain.DemandRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TemplateColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Name}
		for _, k := range positional {
			rec = append(rec, fmt.Sprint(r.Demand.Get(k)))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %q: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		for _, c := range rec {
			if strings.TrimSpace(c) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// isHeader reports whether the first record names columns rather than
// holding counts.
func isHeader(rec []string) bool {
	for _, c := range rec[1:] {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		_, err := decimal.NewFromString(c)
		return err != nil
	}
	return strings.EqualFold(strings.TrimSpace(cell(rec, 0)), domain.ColumnSystemName)
}

func mapHeader(rec []string) (int, map[domain.PointKind]int, error) {
	nameCol := -1
	cols := make(map[domain.PointKind]int)
	for i, h := range rec {
		h = strings.ToUpper(strings.TrimSpace(h))
		if h == strings.ToUpper(domain.ColumnSystemName) || h == "NAME" {
			nameCol = i
			continue
		}
		for _, k := range positional {
			if h == string(k) {
				cols[k] = i
			}
		}
	}
	if nameCol < 0 {
		nameCol = 0
	}
	if len(cols) == 0 {
		return 0, nil, fmt.Errorf("%w: header names no point kinds", domain.ErrInvalidDemand)
	}
	return nameCol, cols, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%q is negative", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(d.IntPart()), nil
}
