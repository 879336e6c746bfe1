package solver

import (
	"context"
	"errors"

	"controller-sizer/internal/domain"
)

// outcomeLabel maps a solve error to a short metric label.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidDemand):
		return "invalid_demand"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrUnknownModule):
		return "unknown_module"
	case errors.Is(err, domain.ErrSearchSpaceTooLarge):
		return "search_space_too_large"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
