package mdp

import "fmt"

// Features is a sparse feature vector keyed by feature name.
type Features map[string]float64

// Dot returns the weighted sum of f under weights. Missing weights count as 0.
func (f Features) Dot(weights map[string]float64) float64 {
	total := 0.0
	for name, value := range f {
		total += weights[name] * value
	}
	return total
}

// Scale multiplies every feature by factor in place.
func (f Features) Scale(factor float64) {
	for name := range f {
		f[name] *= factor
	}
}

// FeatureExtractor maps a (state, action) pair to a feature vector.
type FeatureExtractor[S comparable] interface {
	Features(state S, action Action) Features
}

// FeatureExtractorFunc adapts a plain function to FeatureExtractor.
type FeatureExtractorFunc[S comparable] func(state S, action Action) Features

// Features implements FeatureExtractor
func (fn FeatureExtractorFunc[S]) Features(state S, action Action) Features {
	return fn(state, action)
}

// IdentityExtractor emits a single indicator feature per (state, action)
// pair. With it, approximate Q-learning behaves exactly like the tabular
// learner.
type IdentityExtractor[S comparable] struct{}

// Features implements FeatureExtractor
func (IdentityExtractor[S]) Features(state S, action Action) Features {
	return Features{PairKey(state, action): 1.0}
}

// StateKey renders a state for the serialization boundary.
func StateKey[S comparable](state S) string {
	return fmt.Sprintf("%v", state)
}

// PairKey renders a (state, action) pair as "<state>|<action>".
func PairKey[S comparable](state S, action Action) string {
	return fmt.Sprintf("%v|%s", state, action)
}
