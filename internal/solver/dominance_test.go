package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"controller-sizer/internal/domain"
)

func cand(price float64, aux int, q ...int) domain.Candidate {
	return domain.Candidate{Price: price, AuxQty: aux, Quantities: q}
}

func TestDominates(t *testing.T) {
	tests := []struct {
		name string
		b, a domain.Candidate
		want bool
	}{
		{"cheaper same counts", cand(90, 0, 2, 0, 0, 0), cand(100, 0, 2, 0, 0, 0), true},
		{"same price fewer modules", cand(100, 0, 1, 0, 0, 0), cand(100, 0, 2, 0, 0, 0), true},
		{"same price fewer aux", cand(100, 0, 1, 0, 0, 0), cand(100, 1, 1, 0, 0, 0), true},
		{"identical", cand(100, 0, 1, 0, 0, 0), cand(100, 0, 1, 0, 0, 0), false},
		{"more expensive", cand(110, 0, 0, 0, 0, 0), cand(100, 0, 1, 0, 0, 0), false},
		{"cheaper but more modules", cand(90, 0, 0, 3, 0, 0), cand(100, 0, 1, 0, 0, 0), false},
		{"cheaper but more aux", cand(90, 2, 1, 0, 0, 0), cand(100, 1, 1, 0, 0, 0), false},
		{"different expansion sets", cand(90, 0, 1, 0), cand(100, 0, 1, 0, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dominates(tt.b, tt.a))
		})
	}
}

func TestFilter_CheaperIdenticalCountsWins(t *testing.T) {
	a := cand(100, 0, 2, 0, 0, 0)
	b := cand(90, 0, 2, 0, 0, 0)

	got := Filter([]domain.Candidate{a, b}, DefaultCandidateLimit)
	require.Len(t, got, 1)
	assert.Equal(t, 90.0, got[0].Price)
}

func TestFilter_KeepsTradeoffsSortedByPrice(t *testing.T) {
	in := []domain.Candidate{
		cand(300, 0, 0, 0, 1, 0),
		cand(100, 0, 0, 0, 0, 3),
		cand(200, 0, 1, 0, 0, 0),
		cand(350, 0, 1, 0, 1, 0), // dominated by 200 and 300
	}

	got := Filter(in, DefaultCandidateLimit)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{100, 200, 300}, []float64{got[0].Price, got[1].Price, got[2].Price})
}

func TestFilter_TiesNotDeduplicated(t *testing.T) {
	x := cand(100, 0, 1, 0, 0, 0)
	got := Filter([]domain.Candidate{x, x}, DefaultCandidateLimit)
	assert.Len(t, got, 2)
}

func TestFilter_TruncatesBeforeScan(t *testing.T) {
	var in []domain.Candidate
	for i := 0; i < 10; i++ {
		// each has a distinct dimension so nothing dominates anything else
		q := make([]int, 10)
		q[i] = 1
		in = append(in, domain.Candidate{Price: float64(100 - i), Quantities: q})
	}

	got := Filter(in, 4)
	require.Len(t, got, 4)
	assert.Equal(t, 91.0, got[0].Price)
	assert.Equal(t, 94.0, got[3].Price)
}

func TestFilter_StableOnEqualPrice(t *testing.T) {
	first := domain.Candidate{Price: 50, Quantities: []int{1, 0}, Ordinal: 1}
	second := domain.Candidate{Price: 50, Quantities: []int{0, 1}, Ordinal: 2}

	got := Filter([]domain.Candidate{first, second}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].Ordinal)
}

func TestFilter_Empty(t *testing.T) {
	assert.Empty(t, Filter(nil, DefaultCandidateLimit))
}

func TestCheapest_MatchesStableTruncation(t *testing.T) {
	keep := newCheapest(3)
	prices := []float64{5, 3, 5, 1, 3, 5, 2}
	var all []domain.Candidate
	for i, p := range prices {
		c := domain.Candidate{Price: p, Ordinal: int64(i)}
		all = append(all, c)
		keep.push(c)
	}

	got := keep.sorted()
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 6, 1}, []int64{got[0].Ordinal, got[1].Ordinal, got[2].Ordinal})

	// equal prices keep the earlier ordinal
	keep = newCheapest(1)
	keep.push(domain.Candidate{Price: 1, Ordinal: 4})
	keep.push(domain.Candidate{Price: 1, Ordinal: 2})
	keep.push(domain.Candidate{Price: 1, Ordinal: 9})
	assert.Equal(t, int64(2), keep.sorted()[0].Ordinal)
}
