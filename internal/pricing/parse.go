package pricing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"controller-sizer/internal/catalog"
)

// PriceColumn is the zero-based column holding the unit price.
const PriceColumn = 2

var errEmptyList = errors.New("price list is empty")

// Parse reads a header-less price list. A row whose first column names a
// known module is keyed by that name. Any other row takes the next name of
// catalog.PriceListOrder. Cells may carry a currency sign and thousands
// separators.
func Parse(data []byte, known map[string]bool) (map[string]float64, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	prices := make(map[string]float64)
	position := 0
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read price list: %w", err)
		}
		line++
		if len(record) <= PriceColumn {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, PriceColumn+1, len(record))
		}

		price, err := parsePrice(record[PriceColumn])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		name := strings.TrimSpace(record[0])
		if !known[name] {
			if position >= len(catalog.PriceListOrder) {
				continue
			}
			name = catalog.PriceListOrder[position]
		}
		position++
		prices[name] = price
	}

	if len(prices) == 0 {
		return nil, errEmptyList
	}
	return prices, nil
}

func parsePrice(cell string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(cell))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", cell)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative price %q", cell)
	}
	return d.InexactFloat64(), nil
}
