package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/gridworld"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/testutil"
)

var errEngineDown = errors.New("engine down")

// flakyEnv fails a single step of a single episode with an engine error.
type flakyEnv struct {
	*gridworld.Env
	failEpisode int
	failStep    int
	failErr     error

	resets int
	steps  int
}

func (f *flakyEnv) Reset() {
	f.resets++
	f.steps = 0
	f.Env.Reset()
}

func (f *flakyEnv) Step(a mdp.Action) (mdp.Outcome[gridworld.State], error) {
	if f.resets-1 == f.failEpisode && f.steps == f.failStep {
		return mdp.Outcome[gridworld.State]{}, f.failErr
	}
	f.steps++
	return f.Env.Step(a)
}

func newFlakyEnv(t *testing.T, failEpisode, failStep int, err error) *flakyEnv {
	return &flakyEnv{
		Env:         newGridEnv(t, 1, testutil.ColumnRows...),
		failEpisode: failEpisode,
		failStep:    failStep,
		failErr:     err,
	}
}

func trainOptions(episodes int) TrainOptions[gridworld.State] {
	return TrainOptions[gridworld.State]{Episodes: episodes, Logger: testutil.NopLogger()}
}

func TestEveryPercent(t *testing.T) {
	count := func(sampler ReportSampler, total int) int {
		n := 0
		for ep := 0; ep < total; ep++ {
			if sampler(ep, total) {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 21, count(EveryPercent(5), 100))
	assert.Equal(t, 10, count(EveryPercent(5), 10), "interval never drops below one")
	assert.Equal(t, 2, count(EveryPercent(100), 50), "first and last")
	assert.True(t, EveryPercent(5)(0, 1))
}

func TestTrainCollectsReports(t *testing.T) {
	env := newGridEnv(t, 1, "S . . 1")
	a := newTabular(t, env, agentConfig(0.3, 0.5, 0.9), testutil.DefaultSeed)

	res, err := Train[gridworld.State](context.Background(), env, a, trainOptions(100))
	require.NoError(t, err)

	assert.Len(t, res.Episodes, 100)
	assert.Len(t, res.Reports, 21)
	assert.Equal(t, 100, res.Completed)
	assert.Zero(t, res.Abandoned)
	assert.Equal(t, 0, res.Reports[0].Episode)
	assert.Equal(t, 99, res.Reports[len(res.Reports)-1].Episode)
	assert.Equal(t, 100, a.EpisodesSoFar())

	for i, s := range res.Episodes {
		assert.Equal(t, i, s.Episode)
	}
	assert.Greater(t, res.MeanReward, 0.0)
	assert.LessOrEqual(t, res.MeanReward, 1.0)
	assert.GreaterOrEqual(t, res.MeanSteps, 4.0)
}

func TestTrainSingleEpisodeSummary(t *testing.T) {
	env := newGridEnv(t, 1, testutil.ColumnRows...)
	a := newTabular(t, env, agentConfig(0, 0.5, 0.9), 1)

	res, err := Train[gridworld.State](context.Background(), env, a, trainOptions(1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.MeanReward)
	assert.Equal(t, 0.0, res.StdReward)
	assert.Equal(t, 2.0, res.MeanSteps)
}

func TestTrainZeroEpisodes(t *testing.T) {
	env := newGridEnv(t, 1, testutil.ColumnRows...)
	a := newTabular(t, env, agentConfig(0, 0.5, 0.9), 1)

	res, err := Train[gridworld.State](context.Background(), env, a, trainOptions(0))
	require.NoError(t, err)
	assert.Empty(t, res.Episodes)
	assert.Zero(t, a.Table().Len())
}

func TestTrainRejectsNegativeEpisodes(t *testing.T) {
	env := newGridEnv(t, 1, testutil.ColumnRows...)
	a := newTabular(t, env, agentConfig(0, 0.5, 0.9), 1)

	_, err := Train[gridworld.State](context.Background(), env, a, trainOptions(-1))
	assert.Equal(t, mdp.KindConfig, mdp.KindOf(err))
}

func TestTrainAbandonsEpisodeOnEngineError(t *testing.T) {
	// epsilon 0 on a noiseless grid keeps every choice deterministic, so a
	// rolled back run must match a clean run with one episode fewer
	cfg := agentConfig(0, 0.5, 0.9)

	flaky := newFlakyEnv(t, 1, 1, mdp.EngineError(errEngineDown, "step"))
	a := newTabular(t, flaky.Env, cfg, 1)

	var afterFirst *QTable[gridworld.State]
	var abandoned []EpisodeStats[gridworld.State]
	opts := trainOptions(3)
	opts.OnEpisode = func(s EpisodeStats[gridworld.State]) {
		if s.Episode == 0 {
			afterFirst = a.Table().Clone()
		}
		if s.Err != nil {
			abandoned = append(abandoned, s)
			assert.Equal(t, afterFirst, a.Table(), "learner is rolled back before the callback")
		}
	}

	res, err := Train[gridworld.State](context.Background(), flaky, a, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Completed)
	assert.Equal(t, 1, res.Abandoned)
	assert.Len(t, res.Episodes, 3)
	require.Len(t, abandoned, 1)
	assert.Equal(t, 1, abandoned[0].Episode)
	assert.ErrorIs(t, abandoned[0].Err, errEngineDown)
	assert.Equal(t, 2, a.EpisodesSoFar(), "abandoned episodes are not counted")
	assert.Equal(t, PhaseIdle, a.Phase())

	cleanEnv := newGridEnv(t, 1, testutil.ColumnRows...)
	clean := newTabular(t, cleanEnv, cfg, 1)
	_, err = Train[gridworld.State](context.Background(), cleanEnv, clean, trainOptions(2))
	require.NoError(t, err)
	assert.Equal(t, clean.Table(), a.Table())
}

func TestTrainEvaluatesFrozenLearner(t *testing.T) {
	env := newGridEnv(t, 1, testutil.ColumnRows...)
	a := newTabular(t, env, agentConfig(0.5, 0.5, 0.9), 1)

	opts := trainOptions(5)
	opts.Evaluate = 2
	var trained *QTable[gridworld.State]
	opts.OnEpisode = func(s EpisodeStats[gridworld.State]) {
		if s.Episode == 2 {
			trained = a.Table().Clone()
		}
	}

	res, err := Train[gridworld.State](context.Background(), env, a, opts)
	require.NoError(t, err)
	require.Len(t, res.Episodes, 5)
	for _, s := range res.Episodes {
		assert.Equal(t, s.Episode < 3, s.Training, "episode %d", s.Episode)
	}
	assert.Equal(t, trained, a.Table(), "evaluation episodes do not learn")
	assert.Equal(t, 0.0, a.Epsilon())
}

func TestTrainEvaluatesEveryEpisode(t *testing.T) {
	env := newGridEnv(t, 1, testutil.ColumnRows...)
	a := newTabular(t, env, agentConfig(0.5, 0.5, 0.9), 1)

	opts := trainOptions(3)
	opts.Evaluate = 3
	res, err := Train[gridworld.State](context.Background(), env, a, opts)
	require.NoError(t, err)
	for _, s := range res.Episodes {
		assert.False(t, s.Training)
	}
	assert.Zero(t, a.Table().Len())
}

func TestTrainEvaluationNotDelayedByAbandonedEpisode(t *testing.T) {
	flaky := newFlakyEnv(t, 0, 0, mdp.EngineError(errEngineDown, "step"))
	a := newTabular(t, flaky.Env, agentConfig(0.5, 0.5, 0.9), 1)

	opts := trainOptions(4)
	opts.Evaluate = 2
	opts.OnEngineError = ContinueOnError
	res, err := Train[gridworld.State](context.Background(), flaky, a, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Abandoned)
	require.Len(t, res.Episodes, 4)

	assert.True(t, res.Episodes[1].Training)
	assert.False(t, res.Episodes[2].Training, "first evaluation episode runs frozen")
	assert.False(t, res.Episodes[3].Training)
	assert.Equal(t, 3, a.EpisodesSoFar())
}

// episodeOnly is a learner that cannot be frozen.
type episodeOnly struct{ Learner[gridworld.State] }

func TestTrainRejectsBadEvaluation(t *testing.T) {
	env := newGridEnv(t, 1, testutil.ColumnRows...)
	a := newTabular(t, env, agentConfig(0.5, 0.5, 0.9), 1)

	opts := trainOptions(2)
	opts.Evaluate = 3
	_, err := Train[gridworld.State](context.Background(), env, a, opts)
	assert.Equal(t, mdp.KindConfig, mdp.KindOf(err))

	opts.Evaluate = 1
	_, err = Train[gridworld.State](context.Background(), env, episodeOnly{a}, opts)
	assert.Equal(t, mdp.KindConfig, mdp.KindOf(err))
	assert.Zero(t, a.EpisodesSoFar())
}

func TestTrainStopOnError(t *testing.T) {
	flaky := newFlakyEnv(t, 1, 0, mdp.EngineError(errEngineDown, "step"))
	a := newTabular(t, flaky.Env, agentConfig(0, 0.5, 0.9), 1)

	opts := trainOptions(5)
	opts.OnEngineError = StopOnError
	res, err := Train[gridworld.State](context.Background(), flaky, a, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, errEngineDown)
	assert.Equal(t, 1, res.Completed)
	assert.Equal(t, 1, res.Abandoned)
}

func TestTrainStopsOnNonEngineError(t *testing.T) {
	flaky := newFlakyEnv(t, 0, 0, mdp.DegenerateError(mdp.ErrIllegalAction, "step"))
	a := newTabular(t, flaky.Env, agentConfig(0, 0.5, 0.9), 1)

	res, err := Train[gridworld.State](context.Background(), flaky, a, trainOptions(5))
	require.Error(t, err)
	assert.Equal(t, mdp.KindDegenerate, mdp.KindOf(err))
	assert.Zero(t, res.Completed)
	assert.Zero(t, res.Abandoned)
}

func TestTrainCancelledBetweenEpisodes(t *testing.T) {
	env := newGridEnv(t, 1, testutil.ColumnRows...)
	a := newTabular(t, env, agentConfig(0, 0.5, 0.9), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := trainOptions(10)
	opts.OnEpisode = func(s EpisodeStats[gridworld.State]) {
		if s.Episode == 2 {
			cancel()
		}
	}

	res, err := Train[gridworld.State](ctx, env, a, opts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, res.Completed, "the running episode finishes")
	assert.Len(t, res.Episodes, 3)
}

func TestTrainPublishesEpisodeEvents(t *testing.T) {
	bus := events.NewEventBus()
	var completed, abandoned int
	bus.SubscribeFunc(events.TypeEpisodeCompleted, func(e events.Event) {
		completed++
		assert.Equal(t, "exp-train", e.ExperimentID())
	})
	bus.SubscribeFunc(events.TypeEpisodeAbandoned, func(e events.Event) {
		abandoned++
	})

	flaky := newFlakyEnv(t, 2, 0, mdp.EngineError(errEngineDown, "step"))
	a := newTabular(t, flaky.Env, agentConfig(0, 0.5, 0.9), 1)

	opts := trainOptions(4)
	opts.Publisher = bus
	opts.ExperimentID = "exp-train"
	_, err := Train[gridworld.State](context.Background(), flaky, a, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, completed)
	assert.Equal(t, 1, abandoned)
}

func TestTrainApproximateAgent(t *testing.T) {
	env := newGridEnv(t, 1, "S . . 1")
	a := newApproximate(t, env, mdp.IdentityExtractor[gridworld.State]{}, agentConfig(0.3, 0.5, 0.9), testutil.DefaultSeed)

	opts := trainOptions(300)
	opts.Sampler = func(int, int) bool { return false }
	res, err := Train[gridworld.State](context.Background(), env, a, opts)
	require.NoError(t, err)
	assert.Empty(t, res.Reports)

	act, ok := a.Policy(gridworld.At(0, 0))
	require.True(t, ok)
	assert.Equal(t, mdp.East, act)
	assert.InDelta(t, 0.729, a.QValue(gridworld.At(0, 0), mdp.East), 0.01)
}
