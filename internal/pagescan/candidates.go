package pagescan

import (
	"github.com/probelab/page-resource-inspector/internal/model"
)

// ResourceCandidate is a discovered resource URL tagged with the
// construct that introduced it.
type ResourceCandidate struct {
	URL       string
	Initiator model.Initiator
}

// CandidateSet is the mutable builder for the discovery phase: a
// deduplicated, insertion-ordered set of candidate URLs with a hard
// capacity. It has a single writer (discovery and crawling run
// sequentially) and is frozen via List before probing begins.
type CandidateSet struct {
	max   int
	order []string
	byURL map[string]model.Initiator
}

// NewCandidateSet returns an empty set capped at max entries.
func NewCandidateSet(max int) *CandidateSet {
	return &CandidateSet{
		max:   max,
		byURL: make(map[string]model.Initiator),
	}
}

// Add inserts rawURL under the given initiator. It reports whether the
// entry was inserted: re-adding a known URL is a no-op (the first-seen
// initiator wins), and nothing is added once the cap is reached.
func (s *CandidateSet) Add(rawURL string, initiator model.Initiator) bool {
	if _, seen := s.byURL[rawURL]; seen {
		return false
	}
	if len(s.order) >= s.max {
		return false
	}

	s.byURL[rawURL] = initiator
	s.order = append(s.order, rawURL)
	return true
}

// Full reports whether the set has reached its cap.
func (s *CandidateSet) Full() bool {
	return len(s.order) >= s.max
}

// Len returns the number of candidates.
func (s *CandidateSet) Len() int {
	return len(s.order)
}

// List freezes the set into an ordered slice of candidates.
func (s *CandidateSet) List() []ResourceCandidate {
	out := make([]ResourceCandidate, 0, len(s.order))
	for _, u := range s.order {
		out = append(out, ResourceCandidate{URL: u, Initiator: s.byURL[u]})
	}
	return out
}
