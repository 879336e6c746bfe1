package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
)

func defaultExpansions(t *testing.T) []domain.ModuleSpec {
	t.Helper()
	cat := catalog.Default()
	var exps []domain.ModuleSpec
	for _, name := range cat.Expansions() {
		m, err := cat.Expansion(name)
		if err != nil {
			t.Fatalf("expansion %s: %v", name, err)
		}
		exps = append(exps, m)
	}
	return exps
}

func TestBounds(t *testing.T) {
	exps := defaultExpansions(t)

	tests := []struct {
		required int
		want     []int // XM90, XM70, XM30, XM32
	}{
		{0, []int{0, 0, 0, 0}},
		{1, []int{1, 1, 1, 1}},
		{18, []int{1, 1, 5, 5}},
		{32, []int{1, 2, 8, 8}},
		{133, []int{5, 8, 34, 34}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Bounds(tt.required, exps), "required=%d", tt.required)
	}
}

func TestSearchSpace(t *testing.T) {
	assert.Equal(t, int64(1), SearchSpace(nil, 100))
	assert.Equal(t, int64(6*9*35*35), SearchSpace([]int{5, 8, 34, 34}, DefaultMaxEnumerated))
	assert.Equal(t, int64(11), SearchSpace([]int{5, 8, 34, 34}, 10))
}
