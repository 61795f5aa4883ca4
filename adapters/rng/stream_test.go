package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamDeterminism(t *testing.T) {
	src := New()

	a := src.Stream(12345)
	b := src.Stream(12345)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestTrialStreamsAreIndependent(t *testing.T) {
	src := New()

	a := src.TrialStream(12345, 0)
	b := src.TrialStream(12345, 1)

	same := true
	for i := 0; i < 16; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	assert.False(t, same, "adjacent trials must not share a stream")
}

func TestTrialStreamReproducible(t *testing.T) {
	src := New()

	a := src.TrialStream(12345, 7)
	b := src.TrialStream(12345, 7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDistinctSeedsDiverge(t *testing.T) {
	src := New()

	a := src.TrialStream(12345, 0)
	b := src.TrialStream(12346, 0)
	assert.NotEqual(t, a.Float64(), b.Float64())
}
