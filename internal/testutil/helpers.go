package testutil

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

// DefaultSeed is the seed used by tests that do not care about a specific
// random sequence.
const DefaultSeed = 12345

// NewTestRNG returns a generator that replays the same sequence for seed.
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// TestLogger routes log output through t.Log so it only shows up for
// failing or verbose runs.
func TestLogger(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// AssertPanic fails t unless f panics, and returns the recovered value.
func AssertPanic(t testing.TB, f func(), msgAndArgs ...interface{}) (recovered interface{}) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Errorf("expected panic but none occurred: %v", msgAndArgs)
		}
	}()
	f()
	return nil
}

// ProbabilitySum adds up the probability prob extracts from each item. A
// transition distribution should sum to one.
func ProbabilitySum[T any](items []T, prob func(T) float64) float64 {
	total := 0.0
	for _, item := range items {
		total += prob(item)
	}
	return total
}
