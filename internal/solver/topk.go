package solver

import (
	"container/heap"
	"sort"

	"controller-sizer/internal/domain"
)

// cheapest keeps the k lowest (price, ordinal) candidates seen so far.
// Ordering by ordinal on equal price makes the retained set identical to a
// stable sort of the full enumeration truncated to k.
type cheapest struct {
	k     int
	items candidateHeap
}

func newCheapest(k int) *cheapest {
	return &cheapest{k: k}
}

// accepts reports whether a candidate with this price and ordinal would be kept.
func (c *cheapest) accepts(price float64, ordinal int64) bool {
	if c.k <= 0 || len(c.items) < c.k {
		return true
	}
	top := c.items[0]
	return price < top.Price || (price == top.Price && ordinal < top.Ordinal)
}

func (c *cheapest) push(cand domain.Candidate) {
	if !c.accepts(cand.Price, cand.Ordinal) {
		return
	}
	heap.Push(&c.items, cand)
	if c.k > 0 && len(c.items) > c.k {
		heap.Pop(&c.items)
	}
}

// sorted returns the retained candidates ascending by (price, ordinal).
func (c *cheapest) sorted() []domain.Candidate {
	out := make([]domain.Candidate, len(c.items))
	copy(out, c.items)
	sortByPriceOrdinal(out)
	return out
}

func sortByPriceOrdinal(cands []domain.Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Price != cands[j].Price {
			return cands[i].Price < cands[j].Price
		}
		return cands[i].Ordinal < cands[j].Ordinal
	})
}

// candidateHeap is a max-heap on (price, ordinal).
type candidateHeap []domain.Candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].Price != h[j].Price {
		return h[i].Price > h[j].Price
	}
	return h[i].Ordinal > h[j].Ordinal
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)   { *h = append(*h, x.(domain.Candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
