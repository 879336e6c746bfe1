package solver

import (
	"context"
	"sync/atomic"

	"controller-sizer/internal/domain"
)

// checkEvery is how many quantity vectors are visited between
// cancellation checks and progress reports.
const checkEvery = 1 << 14

// space is the bounded Cartesian product of expansion quantities for one solve.
type space struct {
	demand    domain.PointDemand
	cost      *costModel
	bounds    []int
	schemaIdx []int // position of each enabled expansion in the schema
	width     int   // number of schema expansion columns
	total     int64 // number of quantity vectors
}

// shards returns how many independent slices the outermost dimension yields.
func (s *space) shards() int {
	if len(s.bounds) == 0 {
		return 1
	}
	return s.bounds[0] + 1
}

// stride returns how many ordinals one step of the outermost dimension spans.
func (s *space) stride() int64 {
	if len(s.bounds) == 0 {
		return 1
	}
	return s.total / int64(s.bounds[0]+1)
}

// shardStats counts work done by one shard.
type shardStats struct {
	enumerated int64
	feasible   int64
}

// enumerate visits every quantity vector whose outermost quantity is shard,
// in lexicographic order with the last dimension varying fastest, and
// pushes feasible candidates into keep. counter is shared across shards and
// feeds onProgress.
func (s *space) enumerate(ctx context.Context, shard int, keep *cheapest, counter *atomic.Int64, onProgress func(int64)) (shardStats, error) {
	var st shardStats
	q := make([]int, len(s.bounds))
	ordinal := int64(0)
	if len(q) > 0 {
		q[0] = shard
		ordinal = int64(shard) * s.stride()
	}

	for {
		st.enumerated++
		if st.enumerated%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
			n := counter.Add(checkEvery)
			if onProgress != nil {
				onProgress(n)
			}
		}

		if cand, ok := s.evaluate(q, ordinal, keep); ok {
			st.feasible++
			keep.push(cand)
		}

		if !s.next(q) {
			break
		}
		ordinal++
	}

	n := counter.Add(st.enumerated % checkEvery)
	if onProgress != nil {
		onProgress(n)
	}
	return st, nil
}

// next advances q to the following vector inside the current shard.
// The outermost dimension is never advanced.
func (s *space) next(q []int) bool {
	for i := len(q) - 1; i >= 1; i-- {
		if q[i] < s.bounds[i] {
			q[i]++
			return true
		}
		q[i] = 0
	}
	return false
}

// evaluate returns the candidate for q when it is feasible. The second
// result is true for every feasible vector; the candidate is only fully
// built when keep would retain it.
func (s *space) evaluate(q []int, ordinal int64, keep *cheapest) (domain.Candidate, bool) {
	c := s.cost
	totals := c.base.Capacity
	for i, e := range c.expansions {
		if q[i] > 0 {
			totals = totals.Add(e.Capacity, q[i])
		}
	}
	if !Feasible(s.demand, totals) {
		return domain.Candidate{}, false
	}

	aux := c.auxQty(q)
	price := Round2(c.price(q, aux))
	if !keep.accepts(price, ordinal) {
		return domain.Candidate{Price: price, Ordinal: ordinal}, true
	}

	quantities := make([]int, s.width)
	for i, idx := range s.schemaIdx {
		quantities[idx] = q[i]
	}
	return domain.Candidate{
		Base:       c.base.Name,
		Quantities: quantities,
		AuxQty:     aux,
		Totals:     totals,
		Leftover:   Leftover(s.demand, totals),
		PowerAC:    Round2(c.powerAC(q, aux)),
		Price:      price,
		Width:      Round2(c.width(q, aux)),
		Ordinal:    ordinal,
	}, true
}
