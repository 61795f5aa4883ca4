// Package rng implements the RNG port with math/rand streams whose seeds are
// derived by a fixed splitmix64 mix, so trial streams are reproducible and
// independent of worker scheduling.
package rng

import (
	"math/rand"
)

const trialGamma = 0x9E3779B97F4A7C15 // golden-gamma increment from splitmix64

// Source derives deterministic random streams from integer seeds.
type Source struct{}

// New creates an RNG source.
func New() *Source {
	return &Source{}
}

// Stream returns a generator seeded directly with seed.
func (s *Source) Stream(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TrialStream returns the generator for one trial. The trial seed is
// mix(seed*gamma + trial) where mix is the splitmix64 finalizer; this keeps
// distinct (seed, trial) pairs on distinct streams while staying trivially
// portable to other implementations.
func (s *Source) TrialStream(seed int64, trial int) *rand.Rand {
	mixed := splitmix64(uint64(seed)*trialGamma + uint64(trial))
	return rand.New(rand.NewSource(int64(mixed)))
}

func splitmix64(x uint64) uint64 {
	x += trialGamma
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
