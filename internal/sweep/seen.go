package sweep

import "github.com/mshenfield/cleansweep/internal/domain"

// SeenSweeps remembers every sweep already surfaced during this process run.
// It is owned and mutated only by the polling loop; entries are never
// evicted. Identity is full value equality over both orders, so an order
// that changes upstream (a partial fill, say) produces a fresh report.
type SeenSweeps struct {
	seen map[string]struct{}
}

// NewSeenSweeps returns an empty set.
func NewSeenSweeps() *SeenSweeps {
	return &SeenSweeps{seen: make(map[string]struct{})}
}

// SelectBest filters out sweeps already surfaced, returns the maximum-revenue
// newcomer, and records it. The second return is false when every sweep has
// been seen before, or sweeps is empty.
func (s *SeenSweeps) SelectBest(sweeps []domain.Sweep) (domain.Sweep, bool) {
	var best domain.Sweep
	found := false
	for _, sw := range sweeps {
		if _, ok := s.seen[sw.Key()]; ok {
			continue
		}
		if !found || sw.Revenue.GreaterThan(best.Revenue) {
			best = sw
			found = true
		}
	}
	if !found {
		return domain.Sweep{}, false
	}
	s.seen[best.Key()] = struct{}{}
	return best, true
}

// Len returns the number of surfaced sweeps so far.
func (s *SeenSweeps) Len() int {
	return len(s.seen)
}
