package gridworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/testutil"
)

func TestEnvStepAndReset(t *testing.T) {
	w := New(MustParseGrid(testutil.TwoCellRows...))
	w.SetNoise(0)
	env, err := NewEnv(w, testutil.NewTestRNG(testutil.DefaultSeed))
	require.NoError(t, err)

	assert.Equal(t, At(0, 0), env.CurrentState())

	out, err := env.Step(mdp.East)
	require.NoError(t, err)
	assert.Equal(t, At(1, 0), out.Next)
	assert.Equal(t, 0.0, out.Reward)
	assert.False(t, out.Done)

	out, err = env.Step(mdp.Exit)
	require.NoError(t, err)
	assert.Equal(t, TerminalState, out.Next)
	assert.Equal(t, 1.0, out.Reward)
	assert.True(t, out.Done)

	_, err = env.Step(mdp.Exit)
	require.Error(t, err)
	assert.Equal(t, mdp.KindDegenerate, mdp.KindOf(err))
	assert.ErrorIs(t, err, mdp.ErrTerminalState)

	env.Reset()
	assert.Equal(t, At(0, 0), env.CurrentState())
}

func TestEnvIllegalAction(t *testing.T) {
	env, err := NewEnv(New(MustParseGrid(testutil.TwoCellRows...)), testutil.NewTestRNG(1))
	require.NoError(t, err)

	_, err = env.Step(mdp.Exit)
	require.Error(t, err)
	assert.ErrorIs(t, err, mdp.ErrIllegalAction)
	assert.Equal(t, At(0, 0), env.CurrentState(), "failed step leaves state untouched")
}

func TestEnvNoStart(t *testing.T) {
	_, err := NewEnv(New(MustParseGrid(". 1")), testutil.NewTestRNG(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, mdp.ErrNoStartState)
}

func TestEnvSamplingFollowsDistribution(t *testing.T) {
	w := New(MustParseGrid(
		". . .",
		". S .",
		". . .",
	))
	w.SetNoise(0.2)
	env, err := NewEnv(w, testutil.NewTestRNG(testutil.DefaultSeed))
	require.NoError(t, err)

	const n = 20000
	counts := map[State]int{}
	for i := 0; i < n; i++ {
		env.Reset()
		out, err := env.Step(mdp.North)
		require.NoError(t, err)
		counts[out.Next]++
	}

	assert.InDelta(t, 0.8, float64(counts[At(1, 2)])/n, 0.02)
	assert.InDelta(t, 0.1, float64(counts[At(0, 1)])/n, 0.02)
	assert.InDelta(t, 0.1, float64(counts[At(2, 1)])/n, 0.02)
}

func TestEnvSeededRunsAreReproducible(t *testing.T) {
	run := func() []State {
		w, err := NewNamed("BookGrid")
		require.NoError(t, err)
		env, err := NewEnv(w, testutil.NewTestRNG(7))
		require.NoError(t, err)

		var path []State
		for i := 0; i < 30 && !env.IsTerminal(env.CurrentState()); i++ {
			actions := env.PossibleActions(env.CurrentState())
			out, err := env.Step(actions[i%len(actions)])
			require.NoError(t, err)
			path = append(path, out.Next)
		}
		return path
	}

	assert.Equal(t, run(), run())
}

func TestSampleRoundingSlack(t *testing.T) {
	succ := []mdp.Transition[State]{
		{State: At(0, 0), Probability: 0.5},
		{State: At(1, 0), Probability: 0.49999999},
	}
	assert.Equal(t, At(0, 0), sample(succ, 0.1))
	assert.Equal(t, At(1, 0), sample(succ, 0.7))
	assert.Equal(t, At(1, 0), sample(succ, 0.9999999999))
}
