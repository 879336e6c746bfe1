package solver

import "controller-sizer/internal/domain"

// Bounds returns the inclusive search bound ceil(required/K) for each
// expansion, where K is the expansion's nominal points-per-unit constant.
// required is the total over all demand kinds, not a per-pool figure.
func Bounds(required int, expansions []domain.ModuleSpec) []int {
	out := make([]int, len(expansions))
	for i, e := range expansions {
		out[i] = ceilDiv(required, e.Bound)
	}
	return out
}

// SearchSpace returns the number of quantity vectors for bounds, or
// limit+1 when the product exceeds limit.
func SearchSpace(bounds []int, limit int64) int64 {
	total := int64(1)
	for _, b := range bounds {
		n := int64(b) + 1
		if total > limit/n {
			return limit + 1
		}
		total *= n
	}
	return total
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
