// Package rng provides the single deterministic pseudo-random source shared
// by every tick-local random decision in the match engine (jitter, head
// movement, vision scan choice, AI stagger). Two matches constructed with the
// same seed and fed the same external events must draw the same sequence of
// values, in the same order, every time.
package rng

import "math/rand"

// Source wraps math/rand.Rand and tracks the seed used to create it. The
// Match keeps its own copy of the seed for replay (ReplayRecord.Seed).
type Source struct {
	r    *rand.Rand
	seed int64
}

// New creates a deterministic source from seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the seed this source was constructed with (or last reseeded
// to). It does NOT change as the source is drawn from.
func (s *Source) Seed() int64 {
	return s.seed
}

// Reseed replaces the underlying stream deterministically and records seed
// as the current seed. Nothing in the match engine calls it.
func (s *Source) Reseed(seed int64) {
	s.seed = seed
	s.r.Seed(seed)
}

// Int63 returns a non-negative pseudo-random 63-bit integer. Used to derive
// the next reseed value deterministically.
func (s *Source) Int63() int64 {
	return s.r.Int63()
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// IntRange returns a pseudo-random integer in [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Intn(hi-lo+1)
}

// FloatRange returns a pseudo-random float64 in [lo, hi).
func (s *Source) FloatRange(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Float64()*(hi-lo)
}

// Chance returns true with probability p (p clamped to [0, 1]).
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.r.Float64() < p
}

// Pick returns a uniformly random index in [0, n) for n > 0, or -1 if n <= 0.
func (s *Source) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return s.r.Intn(n)
}
