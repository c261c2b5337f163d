package agent

import (
	"math/rand"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// linearEstimator represents Q(s,a) as the dot product of a weight vector and
// the features of (s,a).
type linearEstimator[S comparable] struct {
	extractor mdp.FeatureExtractor[S]
	weights   map[string]float64
}

func (e *linearEstimator[S]) qValue(state S, action mdp.Action) float64 {
	return e.extractor.Features(state, action).Dot(e.weights)
}

func (e *linearEstimator[S]) update(state S, action mdp.Action, target, alpha float64) {
	features := e.extractor.Features(state, action)
	delta := target - features.Dot(e.weights)
	for name, value := range features {
		e.weights[name] += alpha * delta * value
	}
}

func (e *linearEstimator[S]) checkpoint() func() {
	saved := make(map[string]float64, len(e.weights))
	for k, v := range e.weights {
		saved[k] = v
	}
	return func() { e.weights = saved }
}

// ApproximateQAgent is Q-learning over a linear function of features.
type ApproximateQAgent[S comparable] struct {
	*QAgent[S]
	linear *linearEstimator[S]
}

// NewApproximateQAgent creates a linear Q-learner over extractor's features.
// All weights start at 0.
func NewApproximateQAgent[S comparable](actions ActionFunc[S], extractor mdp.FeatureExtractor[S], cfg Config, rng *rand.Rand) (*ApproximateQAgent[S], error) {
	if extractor == nil {
		return nil, mdp.ConfigError("approximate agent: feature extractor is required")
	}
	linear := &linearEstimator[S]{extractor: extractor, weights: make(map[string]float64)}
	core, err := newQAgent[S](linear, actions, cfg, rng, "approximate_agent")
	if err != nil {
		return nil, err
	}
	return &ApproximateQAgent[S]{QAgent: core, linear: linear}, nil
}

// Weight returns the weight of a single feature.
func (a *ApproximateQAgent[S]) Weight(name string) float64 {
	return a.linear.weights[name]
}

// Weights returns a copy of the weight vector.
func (a *ApproximateQAgent[S]) Weights() map[string]float64 {
	out := make(map[string]float64, len(a.linear.weights))
	for k, v := range a.linear.weights {
		out[k] = v
	}
	return out
}

// Features exposes the extractor's view of (state, action).
func (a *ApproximateQAgent[S]) Features(state S, action mdp.Action) mdp.Features {
	return a.linear.extractor.Features(state, action)
}
