// Package normalization turns raw point counts into solver demand by applying
// a spare-capacity percentage, rounding every kind up to a whole point.
package normalization

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"controller-sizer/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Normalize returns ceil(count * (1 + spare/100)) for every kind.
// Arithmetic is exact, so 10 points at 10% spare is 11, not 12.
func Normalize(raw domain.PointDemand, spare float64) (domain.PointDemand, error) {
	factor, err := spareFactor(spare)
	if err != nil {
		return domain.PointDemand{}, err
	}
	if err := Validate(raw); err != nil {
		return domain.PointDemand{}, err
	}

	out := raw
	for _, kind := range domain.DemandKinds {
		out = out.Set(kind, scale(raw.Get(kind), factor))
	}
	return out, nil
}

// NormalizeRows normalizes every row with the shared spare percentage.
// The first invalid row is returned as a *domain.RowError.
func NormalizeRows(rows []domain.DemandRow, spare float64) ([]domain.DemandRow, error) {
	factor, err := spareFactor(spare)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DemandRow, len(rows))
	for i, row := range rows {
		if err := Validate(row.Demand); err != nil {
			return nil, &domain.RowError{Row: row.Name, Err: err}
		}
		d := row.Demand
		for _, kind := range domain.DemandKinds {
			d = d.Set(kind, scale(row.Demand.Get(kind), factor))
		}
		out[i] = domain.DemandRow{Name: row.Name, Demand: d}
	}
	return out, nil
}

// Validate rejects negative counts.
func Validate(d domain.PointDemand) error {
	for _, kind := range domain.DemandKinds {
		if v := d.Get(kind); v < 0 {
			return fmt.Errorf("%w: %s count %d is negative", domain.ErrInvalidDemand, kind, v)
		}
	}
	return nil
}

func spareFactor(spare float64) (decimal.Decimal, error) {
	if math.IsNaN(spare) || math.IsInf(spare, 0) {
		return decimal.Zero, fmt.Errorf("%w: spare percentage is not a number", domain.ErrInvalidDemand)
	}
	if spare < 0 {
		return decimal.Zero, fmt.Errorf("%w: spare percentage %v is negative", domain.ErrInvalidDemand, spare)
	}
	return decimal.NewFromInt(1).Add(decimal.NewFromFloat(spare).Div(hundred)), nil
}

func scale(count int, factor decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(count)).Mul(factor).Ceil().IntPart())
}
