package ports

import (
	"math/rand"
)

// RNG provides seeded random number generation for deterministic simulations.
//
// Reproducibility is a design property, not an accident of a runtime
// generator: given the same seed and trial index, TrialStream must return a
// stream producing the identical draw sequence across runs and across worker
// counts. Simulations draw one trial's values completely before the next
// trial's, always from that trial's own stream.
type RNG interface {
	// Stream returns a deterministic generator for a whole operation.
	Stream(seed int64) *rand.Rand

	// TrialStream returns the generator for one Monte Carlo trial, derived
	// deterministically from the base seed and the trial index so that
	// parallel workers never share a stream.
	TrialStream(seed int64, trial int) *rand.Rand
}
