// Package rng provides the seeded pseudo-random generator every reproducible
// part of the game draws from.
//
// The generator is Marsaglia's xor128 seeded from a string the same way the
// seedrandom "xor128" generator is: each UTF-16 code unit of the seed is XORed
// into x followed by one step, and 64 extra steps are taken after the seed is
// consumed. Saved seeds therefore replay identically in any implementation
// that follows the same procedure.
package rng

import "unicode/utf16"

const warmupRounds = 64

// Source is an xor128 generator. The zero value is a valid (all-zero,
// degenerate) generator; use New to seed one.
type Source struct {
	x, y, z, w uint32
}

// New returns a generator seeded from seed.
func New(seed string) *Source {
	s := &Source{}
	units := utf16.Encode([]rune(seed))
	for k := 0; k < len(units)+warmupRounds; k++ {
		if k < len(units) {
			s.x ^= uint32(units[k])
		}
		s.Uint32()
	}
	return s
}

// Uint32 advances the generator and returns the next 32 bits.
func (s *Source) Uint32() uint32 {
	t := s.x ^ (s.x << 11)
	s.x, s.y, s.z = s.y, s.z, s.w
	s.w ^= (s.w >> 19) ^ t ^ (t >> 8)
	return s.w
}

// Float64 returns a value in [0, 1) built from a single 32-bit step.
func (s *Source) Float64() float64 {
	return float64(s.Uint32()) / 4294967296.0
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with non-positive bound")
	}
	return int(s.Float64() * float64(n))
}

// SubSeed derives the seed for an independent stream, e.g. one per market.
func SubSeed(seed, salt string) string {
	return seed + "-" + salt
}
