package reporting

import (
	"encoding/csv"
	"strings"
)

// RenderCSV renders t as CSV with a header row.
func RenderCSV(t Table) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(t.Columns); err != nil {
		return "", err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}
