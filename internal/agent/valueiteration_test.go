package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/gridworld"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/testutil"
)

func viConfig(discount float64, iterations int) ValueIterationConfig {
	return ValueIterationConfig{Discount: discount, Iterations: iterations, Logger: testutil.NopLogger()}
}

func noiselessWorld(rows ...string) *gridworld.Gridworld {
	w := gridworld.New(gridworld.MustParseGrid(rows...))
	w.SetNoise(0)
	return w
}

// deadEndModel: state 0 moves east into state 1 for a reward of 1. State 1 is
// not terminal but has no actions.
type deadEndModel struct{}

func (deadEndModel) States() []int { return []int{0, 1} }
func (deadEndModel) PossibleActions(s int) []mdp.Action {
	if s == 0 {
		return []mdp.Action{mdp.East}
	}
	return nil
}
func (deadEndModel) TransitionStatesAndProbs(s int, a mdp.Action) []mdp.Transition[int] {
	if s == 0 && a == mdp.East {
		return []mdp.Transition[int]{{State: 1, Probability: 1}}
	}
	return nil
}
func (deadEndModel) Reward(int, mdp.Action, int) float64 { return 1 }
func (deadEndModel) IsTerminal(int) bool { return false }

func TestValueIterationTwoCellGrid(t *testing.T) {
	w := noiselessWorld(testutil.TwoCellRows...)

	sol, err := Solve[gridworld.State](context.Background(), w, viConfig(0.9, 100))
	require.NoError(t, err)

	start, exit := gridworld.At(0, 0), gridworld.At(1, 0)
	assert.InDelta(t, 1.0, sol.Values[exit], 1e-12)
	assert.InDelta(t, 0.9, sol.Values[start], 1e-12)
	assert.NotContains(t, sol.Values, gridworld.TerminalState)

	assert.Equal(t, mdp.East, sol.Policy[start])
	assert.Equal(t, mdp.Exit, sol.Policy[exit])
	assert.NotContains(t, sol.Policy, gridworld.TerminalState)

	assert.InDelta(t, 0.9, sol.QValues.Get(start, mdp.East), 1e-12)
	assert.InDelta(t, 0.81, sol.QValues.Get(start, mdp.West), 1e-12)
	assert.Equal(t, 100, sol.Sweeps)
	assert.InDelta(t, 0.0, sol.Residual, 1e-12)
}

func TestValueIterationBookGrid(t *testing.T) {
	w, err := gridworld.NewNamed("BookGrid")
	require.NoError(t, err)

	vi, err := NewValueIteration[gridworld.State](w, viConfig(0.9, 100))
	require.NoError(t, err)
	require.NoError(t, vi.Run(context.Background()))

	expected := map[gridworld.State]float64{
		gridworld.At(0, 2): 0.64, gridworld.At(1, 2): 0.74, gridworld.At(2, 2): 0.85, gridworld.At(3, 2): 1.00,
		gridworld.At(0, 1): 0.57, gridworld.At(2, 1): 0.57, gridworld.At(3, 1): -1.00,
		gridworld.At(0, 0): 0.49, gridworld.At(1, 0): 0.43, gridworld.At(2, 0): 0.48, gridworld.At(3, 0): 0.28,
	}
	for s, v := range expected {
		assert.InDelta(t, v, vi.Value(s), 0.01, "V%s", s)
	}

	for s, a := range map[gridworld.State]mdp.Action{
		gridworld.At(0, 0): mdp.North,
		gridworld.At(0, 2): mdp.East,
		gridworld.At(2, 2): mdp.East,
		gridworld.At(3, 2): mdp.Exit,
	} {
		got, ok := vi.Action(s)
		require.True(t, ok)
		assert.Equal(t, a, got, "policy at %s", s)
	}
}

func TestValueIterationIsSynchronous(t *testing.T) {
	w := noiselessWorld("S . 1")
	vi, err := NewValueIteration[gridworld.State](w, viConfig(0.9, 3))
	require.NoError(t, err)

	require.NoError(t, vi.Sweep())
	assert.InDelta(t, 1.0, vi.Value(gridworld.At(2, 0)), 1e-12)
	assert.Equal(t, 0.0, vi.Value(gridworld.At(1, 0)))
	assert.InDelta(t, 1.0, vi.Residual(), 1e-12)

	require.NoError(t, vi.Sweep())
	assert.InDelta(t, 0.9, vi.Value(gridworld.At(1, 0)), 1e-12)
	assert.Equal(t, 0.0, vi.Value(gridworld.At(0, 0)), "values only move one step per sweep")

	require.NoError(t, vi.Run(context.Background()))
	assert.Equal(t, 3, vi.Sweeps())
	assert.InDelta(t, 0.81, vi.Value(gridworld.At(0, 0)), 1e-12)
}

func TestValueIterationZeroIterations(t *testing.T) {
	w := noiselessWorld(testutil.TwoCellRows...)

	sol, err := Solve[gridworld.State](context.Background(), w, viConfig(0.9, 0))
	require.NoError(t, err)

	for s, v := range sol.Values {
		assert.Equal(t, 0.0, v, "V%s", s)
	}
	assert.Len(t, sol.Values, len(w.States())-1, "every state but the terminal sentinel")
	assert.NotContains(t, sol.Values, gridworld.TerminalState)
	// all Q are 0 at the start position, so the first listed action wins
	assert.Equal(t, mdp.North, sol.Policy[gridworld.At(0, 0)])
}

func TestValueIterationDeadEndState(t *testing.T) {
	sol, err := Solve[int](context.Background(), deadEndModel{}, viConfig(0.5, 10))
	require.NoError(t, err)

	assert.Equal(t, 0.0, sol.Values[1])
	assert.InDelta(t, 1.0, sol.Values[0], 1e-12)
	assert.NotContains(t, sol.Policy, 1)
}

func TestValueIterationConfigErrors(t *testing.T) {
	w := noiselessWorld(testutil.TwoCellRows...)

	tests := []struct {
		name string
		cfg  ValueIterationConfig
	}{
		{"zero discount", viConfig(0, 10)},
		{"discount above one", viConfig(1.5, 10)},
		{"negative iterations", viConfig(0.9, -1)},
		{"negative bound", ValueIterationConfig{Discount: 0.9, Iterations: 1, MaxMagnitude: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewValueIteration[gridworld.State](w, tt.cfg)
			require.Error(t, err)
			assert.Equal(t, mdp.KindConfig, mdp.KindOf(err))
		})
	}
}

func TestValueIterationDivergenceGuard(t *testing.T) {
	w := noiselessWorld(testutil.TwoCellRows...)
	cfg := viConfig(1, 10)
	cfg.MaxMagnitude = 0.5

	_, err := Solve[gridworld.State](context.Background(), w, cfg)
	require.Error(t, err)
	assert.Equal(t, mdp.KindDivergence, mdp.KindOf(err))
}

func TestValueIterationCancelled(t *testing.T) {
	w := noiselessWorld(testutil.TwoCellRows...)
	vi, err := NewValueIteration[gridworld.State](w, viConfig(0.9, 10))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = vi.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, vi.Sweeps())
}

func TestValueIterationPublishesSweeps(t *testing.T) {
	bus := events.NewEventBus()
	var sweeps []int
	bus.SubscribeFunc(events.TypeSweepCompleted, func(e events.Event) {
		sweeps = append(sweeps, e.(*events.SweepCompletedEvent).Sweep)
	})

	cfg := viConfig(0.9, 3)
	cfg.Publisher = bus
	cfg.ExperimentID = "exp-vi"
	_, err := Solve[gridworld.State](context.Background(), noiselessWorld(testutil.TwoCellRows...), cfg)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, sweeps)
}
