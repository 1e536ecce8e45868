// Package rng implements the deterministic seeded selector driving all
// pseudo-random generation decisions. A Source derived from the same date
// string always emits the same sequence, on every platform, so a quest set
// can be regenerated byte-identically for retries and caching.
package rng

import "hash/fnv"

// splitmix64 constants (Vigna, 2015).
const (
	splitmixGamma = 0x9E3779B97F4A7C15
	splitmixMix1  = 0xBF58476D1CE4E5B9
	splitmixMix2  = 0x94D049BB133111EB
)

// Source is a splitmix64 stream. Not safe for concurrent use; generation is
// single-threaded by design.
type Source struct {
	state uint64
}

// NewSource creates a Source from a raw seed.
func NewSource(seed uint64) *Source {
	return &Source{state: seed}
}

// FromDate derives a Source from a calendar date string plus a salt.
// Distinct salts (for example, one per granularity) yield independent
// streams for the same day.
func FromDate(dateString, salt string) *Source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(dateString))
	if salt != "" {
		_, _ = h.Write([]byte{':'})
		_, _ = h.Write([]byte(salt))
	}
	return NewSource(h.Sum64())
}

func (s *Source) next() uint64 {
	s.state += splitmixGamma
	z := s.state
	z = (z ^ (z >> 30)) * splitmixMix1
	z = (z ^ (z >> 27)) * splitmixMix2
	return z ^ (z >> 31)
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return float64(s.next()>>11) / (1 << 53)
}

// Intn returns a value in [0, n). Panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with non-positive n")
	}
	return int(s.Float64() * float64(n))
}

// Shuffle performs a deterministic Fisher-Yates shuffle over n elements.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}

// PickOne returns an index in [0, len(values)) drawn from values' positions
// with equal probability, or -1 for an empty slice.
func PickOne(s *Source, n int) int {
	if n == 0 {
		return -1
	}
	return s.Intn(n)
}

// WeightedIndex draws a weighted pick over n items. weight(i) must return
// the selection weight of item i; non-positive weights exclude the item.
// The draw sums weights, scales a uniform sample by the total, then walks
// the list subtracting weights until the remainder reaches zero; ties
// resolve to the first qualifying item. Returns (-1, false) when no item
// carries positive weight - callers treat that as "pool exhausted", not an
// error.
func WeightedIndex(s *Source, n int, weight func(i int) float64) (int, bool) {
	total := 0.0
	for i := 0; i < n; i++ {
		if w := weight(i); w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1, false
	}

	remainder := s.Float64() * total
	for i := 0; i < n; i++ {
		w := weight(i)
		if w <= 0 {
			continue
		}
		remainder -= w
		if remainder <= 0 {
			return i, true
		}
	}

	// Float drift can leave a sliver of remainder; fall back to the last
	// positively-weighted item.
	for i := n - 1; i >= 0; i-- {
		if weight(i) > 0 {
			return i, true
		}
	}
	return -1, false
}
