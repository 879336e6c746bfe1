package solver

import (
	"sort"

	"controller-sizer/internal/domain"
)

// DefaultCandidateLimit caps how many of the cheapest feasible candidates
// enter the quadratic dominance scan.
const DefaultCandidateLimit = 500

// Dominates reports whether b makes a redundant: b is no more expensive,
// uses no more of any expansion or auxiliary module, and is strictly better
// in price or in at least one count. Width and power are not compared.
// Candidates over different expansion sets never dominate each other.
func Dominates(b, a domain.Candidate) bool {
	if b.Price > a.Price {
		return false
	}
	bc, ac := b.Counts(), a.Counts()
	if len(bc) != len(ac) {
		return false
	}
	strict := b.Price < a.Price
	for i := range ac {
		if bc[i] > ac[i] {
			return false
		}
		if bc[i] < ac[i] {
			strict = true
		}
	}
	return strict
}

// Filter keeps the limit cheapest candidates (stable on input order for equal
// prices), drops every candidate dominated by another one and returns the
// survivors ascending by price. Identical candidates do not dominate each
// other and are all kept.
func Filter(candidates []domain.Candidate, limit int) []domain.Candidate {
	sorted := make([]domain.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]domain.Candidate, 0, len(sorted))
	for i := range sorted {
		dominated := false
		for j := range sorted {
			if i != j && Dominates(sorted[j], sorted[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, sorted[i])
		}
	}
	return out
}
