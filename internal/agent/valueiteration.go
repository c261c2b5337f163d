package agent

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// ValueIterationConfig configures a ValueIteration solver.
type ValueIterationConfig struct {
	Discount   float64
	Iterations int

	// MaxMagnitude aborts the run with a divergence error once any |V(s)|
	// exceeds it. Zero disables the check.
	MaxMagnitude float64

	ExperimentID string
	Publisher    events.Publisher
	Logger       zerolog.Logger
}

func (c ValueIterationConfig) validate() error {
	if !common.IsRate(c.Discount) {
		return mdp.ConfigError("discount must be in (0, 1], got %v", c.Discount)
	}
	if c.Iterations < 0 {
		return mdp.ConfigError("iterations must be non-negative, got %d", c.Iterations)
	}
	if c.MaxMagnitude < 0 {
		return mdp.ConfigError("max magnitude must be non-negative, got %v", c.MaxMagnitude)
	}
	return nil
}

// ValueIteration plans over a Model with synchronous Bellman backups: every
// sweep computes all new values from the previous sweep's values.
type ValueIteration[S comparable] struct {
	model    mdp.Model[S]
	cfg      ValueIterationConfig
	values   map[S]float64
	sweeps   int
	residual float64
	logger   zerolog.Logger
}

// NewValueIteration validates cfg and returns a solver with every value at 0.
// Call Run to perform the sweeps.
func NewValueIteration[S comparable](model mdp.Model[S], cfg ValueIterationConfig) (*ValueIteration[S], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NopPublisher{}
	}
	return &ValueIteration[S]{
		model:  model,
		cfg:    cfg,
		values: make(map[S]float64),
		logger: cfg.Logger.With().Str("component", "value_iteration").Logger(),
	}, nil
}

// Run performs the remaining configured sweeps. ctx is checked between sweeps.
func (vi *ValueIteration[S]) Run(ctx context.Context) error {
	for vi.sweeps < vi.cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := vi.Sweep(); err != nil {
			return err
		}
	}

	vi.logger.Debug().
		Int("sweeps", vi.sweeps).
		Float64("residual", vi.residual).
		Msg("Value iteration finished")
	return nil
}

// Sweep performs one batch backup over every state of the model.
func (vi *ValueIteration[S]) Sweep() error {
	states := vi.model.States()
	next := make(map[S]float64, len(states))
	deltas := make([]float64, 0, len(states))
	magnitudes := make([]float64, 0, len(states))

	for _, s := range states {
		v := 0.0
		if _, best, ok := greedy(vi.model.PossibleActions(s), func(a mdp.Action) float64 { return vi.QValue(s, a) }); ok {
			v = best
		}
		next[s] = v
		deltas = append(deltas, math.Abs(v-vi.values[s]))
		magnitudes = append(magnitudes, v)
	}

	vi.values = next
	vi.sweeps++
	vi.residual = 0
	if len(deltas) > 0 {
		vi.residual = floats.Max(deltas)
	}

	vi.logger.Debug().
		Int("sweep", vi.sweeps).
		Float64("residual", vi.residual).
		Msg("Sweep completed")
	vi.cfg.Publisher.Publish(events.NewSweepCompletedEvent(vi.cfg.ExperimentID, vi.sweeps, vi.residual))

	if vi.cfg.MaxMagnitude > 0 && len(magnitudes) > 0 {
		if peak := floats.Norm(magnitudes, math.Inf(1)); !(peak <= vi.cfg.MaxMagnitude) {
			return mdp.DivergenceError("sweep %d: max |V| %v exceeds %v", vi.sweeps, peak, vi.cfg.MaxMagnitude)
		}
	}
	return nil
}

// Value returns V(s) after the sweeps performed so far.
func (vi *ValueIteration[S]) Value(s S) float64 {
	return vi.values[s]
}

// QValue returns sum over s' of P(s'|s,a) * (R(s,a,s') + discount * V(s')).
func (vi *ValueIteration[S]) QValue(s S, a mdp.Action) float64 {
	q := 0.0
	for _, t := range vi.model.TransitionStatesAndProbs(s, a) {
		q += t.Probability * (vi.model.Reward(s, a, t.State) + vi.cfg.Discount*vi.values[t.State])
	}
	return q
}

// Action returns the greedy action at s. ok is false when s has no actions.
func (vi *ValueIteration[S]) Action(s S) (mdp.Action, bool) {
	a, _, ok := greedy(vi.model.PossibleActions(s), func(a mdp.Action) float64 { return vi.QValue(s, a) })
	return a, ok
}

// Values returns a copy of V for every non-terminal state of the model.
func (vi *ValueIteration[S]) Values() map[S]float64 {
	out := make(map[S]float64)
	for _, s := range vi.model.States() {
		if vi.model.IsTerminal(s) {
			continue
		}
		out[s] = vi.values[s]
	}
	return out
}

// Policy returns the greedy action of every state that has one.
func (vi *ValueIteration[S]) Policy() map[S]mdp.Action {
	out := make(map[S]mdp.Action)
	for _, s := range vi.model.States() {
		if a, ok := vi.Action(s); ok {
			out[s] = a
		}
	}
	return out
}

// QValues tabulates Q for every legal pair of the model.
func (vi *ValueIteration[S]) QValues() *QTable[S] {
	t := NewQTable[S]()
	for _, s := range vi.model.States() {
		for _, a := range vi.model.PossibleActions(s) {
			t.Set(s, a, vi.QValue(s, a))
		}
	}
	return t
}

// Sweeps returns the number of sweeps performed.
func (vi *ValueIteration[S]) Sweeps() int { return vi.sweeps }

// Residual returns the largest |V_k(s) - V_k-1(s)| of the last sweep.
func (vi *ValueIteration[S]) Residual() float64 { return vi.residual }

// Solution is the outcome of Solve.
type Solution[S comparable] struct {
	Values   map[S]float64
	QValues  *QTable[S]
	Policy   map[S]mdp.Action
	Sweeps   int
	Residual float64
}

// Solve runs value iteration to completion and tabulates the result.
func Solve[S comparable](ctx context.Context, model mdp.Model[S], cfg ValueIterationConfig) (*Solution[S], error) {
	vi, err := NewValueIteration(model, cfg)
	if err != nil {
		return nil, err
	}
	if err := vi.Run(ctx); err != nil {
		return nil, err
	}
	return &Solution[S]{
		Values:   vi.Values(),
		QValues:  vi.QValues(),
		Policy:   vi.Policy(),
		Sweeps:   vi.Sweeps(),
		Residual: vi.Residual(),
	}, nil
}
