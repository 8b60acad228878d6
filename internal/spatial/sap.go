package spatial

import "sort"

// SweepAndPrune implements 1-axis sweep with temporal coherence for
// broad-phase overlap detection. It projects entity bounding intervals onto
// the X-axis, sorts endpoints, and detects overlaps. With temporal coherence
// (entities move little tick to tick), insertion sort approaches O(n).
//
// The match engine uses this to find ball/player proximity candidates —
// e.g. "who could plausibly intercept or collect the ball this tick" —
// before running the precise possession-radius check (narrow phase).
//
// Origin: Baraff & Witkin (SIGGRAPH 1992); Bullet Physics (2003).
type SweepAndPrune struct {
	endpoints  []SAPEndpoint
	pairs      []CollisionPair
	active     []uint32
	useInsSort bool
}

// SAPEndpoint represents one end of a bounding interval on the sweep axis.
type SAPEndpoint struct {
	Value    float32
	EntityID uint32
	IsMin    bool
}

// CollisionPair represents two entities whose bounding intervals overlap on
// the sweep axis (a broad-phase candidate, not a confirmed overlap).
type CollisionPair struct {
	A, B uint32
}

// NewSweepAndPrune creates a broad phase sized for maxEntities.
func NewSweepAndPrune(maxEntities int) *SweepAndPrune {
	return &SweepAndPrune{
		endpoints:  make([]SAPEndpoint, 0, maxEntities*2),
		pairs:      make([]CollisionPair, 0, maxEntities),
		active:     make([]uint32, 0, maxEntities/4+1),
		useInsSort: true,
	}
}

// UpdateFromSlice rebuilds endpoints from entity positions and a uniform
// interval radius (half-width), then returns all overlapping pairs. The
// returned slice is reused on subsequent calls.
func (s *SweepAndPrune) UpdateFromSlice(positions [][2]float32, radius float32) []CollisionPair {
	s.pairs = s.pairs[:0]
	s.endpoints = s.endpoints[:0]

	for i, pos := range positions {
		x := pos[0]
		s.endpoints = append(s.endpoints,
			SAPEndpoint{x - radius, uint32(i), true},
			SAPEndpoint{x + radius, uint32(i), false},
		)
	}

	if s.useInsSort && len(s.endpoints) > 1 {
		insertionSortEndpoints(s.endpoints)
	} else {
		sort.Slice(s.endpoints, func(i, j int) bool {
			return s.endpoints[i].Value < s.endpoints[j].Value
		})
	}

	s.active = s.active[:0]
	for _, ep := range s.endpoints {
		if ep.IsMin {
			for _, other := range s.active {
				s.pairs = append(s.pairs, CollisionPair{ep.EntityID, other})
			}
			s.active = append(s.active, ep.EntityID)
		} else {
			for i, id := range s.active {
				if id == ep.EntityID {
					s.active[i] = s.active[len(s.active)-1]
					s.active = s.active[:len(s.active)-1]
					break
				}
			}
		}
	}

	return s.pairs
}

// SetInsertionSort toggles the insertion-sort fast path (on by default).
// Disable it if entity order changes drastically tick to tick (e.g. after a
// substitution reshuffle), falling back to O(n log n) sort.Slice.
func (s *SweepAndPrune) SetInsertionSort(enabled bool) {
	s.useInsSort = enabled
}

func insertionSortEndpoints(eps []SAPEndpoint) {
	for i := 1; i < len(eps); i++ {
		key := eps[i]
		j := i - 1
		for j >= 0 && eps[j].Value > key.Value {
			eps[j+1] = eps[j]
			j--
		}
		eps[j+1] = key
	}
}
