// Package metrics folds per-row batch selections into column totals.
package metrics

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"controller-sizer/internal/domain"
)

// ErrNoSelections is returned when there is nothing to aggregate.
var ErrNoSelections = errors.New("no selections available for aggregation")

// Totals sums every numeric column of the selected candidates in schema
// column order. Sums are exact and rounded to two decimals, so the price
// total equals the sum of the printed per-row prices.
func Totals(schema domain.Schema, rows []domain.RowSelection) ([]float64, error) {
	if len(rows) == 0 {
		return nil, ErrNoSelections
	}
	width := len(schema.Columns())
	sums := make([]decimal.Decimal, width)
	for i := range sums {
		sums[i] = decimal.Zero
	}

	for _, row := range rows {
		vals := row.Candidate.Values(schema)
		if len(vals) != width {
			return nil, fmt.Errorf("row %q: expected %d columns, got %d", row.Name, width, len(vals))
		}
		for i, v := range vals {
			sums[i] = sums[i].Add(decimal.NewFromFloat(v))
		}
	}

	out := make([]float64, width)
	for i, s := range sums {
		out[i] = s.Round(2).InexactFloat64()
	}
	return out, nil
}

// ModuleCounts returns the total quantity of every base, expansion and
// auxiliary module across rows, keyed by module name.
func ModuleCounts(schema domain.Schema, rows []domain.RowSelection) map[string]int {
	out := make(map[string]int)
	for _, row := range rows {
		c := row.Candidate
		if c.Base != "" {
			out[c.Base]++
		}
		for i, name := range schema.Expansions {
			if i < len(c.Quantities) && c.Quantities[i] > 0 {
				out[name] += c.Quantities[i]
			}
		}
		if c.AuxQty > 0 {
			out[schema.Aux] += c.AuxQty
		}
	}
	return out
}
