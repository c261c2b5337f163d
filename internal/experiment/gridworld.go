package experiment

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/gridworld"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// gridLearner is a trainable gridworld agent.
type gridLearner interface {
	agent.Learner[gridworld.State]
	gridEstimates
	SetRecorder(r agent.Recorder[gridworld.State])
}

func newGridworld(name string, noise, livingReward float64) (*gridworld.Gridworld, error) {
	world, err := gridworld.NewNamed(name)
	if err != nil {
		return nil, err
	}
	world.SetNoise(noise)
	world.SetLivingReward(livingReward)
	return world, nil
}

// ValueIteration solves a named gridworld.
func (r *Runner) ValueIteration(ctx context.Context, req ValueIterationRequest) (*ValueIterationResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	world, err := newGridworld(req.Grid, req.Noise, req.LivingReward)
	if err != nil {
		return nil, err
	}

	return execute(ctx, r, r.newRun(KindValueIteration), req.Grid, AlgorithmValueIteration, func(rn run) (*ValueIterationResult, error) {
		sol, err := agent.Solve[gridworld.State](ctx, world, agent.ValueIterationConfig{
			Discount:     req.Discount,
			Iterations:   req.Iterations,
			MaxMagnitude: req.MaxMagnitude,
			ExperimentID: rn.id,
			Publisher:    r.publisher,
			Logger:       rn.logger,
		})
		if err != nil {
			return nil, err
		}

		est := solverEstimates{sol: sol}
		t := tabulate(world, est)
		return &ValueIterationResult{
			ExperimentID: rn.id,
			Grid:         req.Grid,
			Iterations:   req.Iterations,
			Discount:     req.Discount,
			Noise:        req.Noise,
			LivingReward: req.LivingReward,
			Sweeps:       sol.Sweeps,
			Residual:     sol.Residual,
			GridData:     gridData(world, est),
			Values:       t.values,
			QValues:      t.qValues,
			Policy:       t.policy,
		}, nil
	})
}

func newGridLearner(req QLearningRequest, env *gridworld.Env, rng *rand.Rand, logger zerolog.Logger) (gridLearner, error) {
	cfg := agent.Config{
		Epsilon:  req.Epsilon,
		Alpha:    req.Alpha,
		Discount: req.Discount,
		Logger:   logger,
	}
	switch req.Agent {
	case "", AgentQLearning:
		a, err := agent.NewQLearningAgent[gridworld.State](env.PossibleActions, cfg, rng)
		if err != nil {
			return nil, err
		}
		return a, nil
	case AgentApproximateQ:
		var extractor mdp.FeatureExtractor[gridworld.State]
		switch req.Extractor {
		case "", ExtractorIdentity:
			extractor = mdp.IdentityExtractor[gridworld.State]{}
		case ExtractorCoordinates:
			extractor = gridworld.CoordinateExtractor{}
		default:
			return nil, mdp.UnknownNameError("extractor", req.Extractor)
		}
		a, err := agent.NewApproximateQAgent[gridworld.State](env.PossibleActions, extractor, cfg, rng)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, mdp.UnknownNameError("gridworld agent", req.Agent)
	}
}

// QLearning trains a Q-learner on a named gridworld and tabulates what it
// learned.
func (r *Runner) QLearning(ctx context.Context, req QLearningRequest) (*QLearningResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	world, err := newGridworld(req.Grid, req.Noise, req.LivingReward)
	if err != nil {
		return nil, err
	}
	seed, envRng, agentRng := seeded(req.Seed)
	env, err := gridworld.NewEnv(world, envRng)
	if err != nil {
		return nil, err
	}
	rn := r.newRun(KindQLearning)
	learner, err := newGridLearner(req, env, agentRng, rn.logger)
	if err != nil {
		return nil, err
	}
	if req.Agent == "" {
		req.Agent = AgentQLearning
	}

	algorithm := AlgorithmQLearning
	if req.Agent == AgentApproximateQ {
		algorithm = AlgorithmApproximateQLearning
	}

	return execute(ctx, r, rn, req.Grid, algorithm, func(rn run) (*QLearningResult, error) {
		var buf *experience.Buffer[gridworld.State]
		if req.RecordTransitions > 0 {
			buf = experience.NewBuffer[gridworld.State](req.RecordTransitions, rn.logger)
			learner.SetRecorder(buf)
		}

		sampler := agent.EveryPercent(agent.DefaultReportPercent)
		if req.ReportEveryPercent > 0 {
			sampler = agent.EveryPercent(req.ReportEveryPercent)
		}
		res, err := agent.Train[gridworld.State](ctx, env, learner, agent.TrainOptions[gridworld.State]{
			Episodes:     req.Episodes,
			MaxSteps:     req.MaxSteps,
			Sampler:      sampler,
			ExperimentID: rn.id,
			Publisher:    r.publisher,
			Logger:       rn.logger,
		})
		if err != nil {
			return nil, err
		}

		t := tabulate(world, learner)
		out := &QLearningResult{
			ExperimentID:    rn.id,
			Grid:            req.Grid,
			Agent:           req.Agent,
			Episodes:        req.Episodes,
			Epsilon:         req.Epsilon,
			Alpha:           req.Alpha,
			Discount:        req.Discount,
			Noise:           req.Noise,
			LivingReward:    req.LivingReward,
			Seed:            seed,
			TrainingHistory: episodeReports(res.Reports),
			Summary:         trainingSummary(res),
			GridData:        gridData(world, learner),
			Values:          t.values,
			QValues:         t.qValues,
			Policy:          t.policy,
		}
		if a, ok := learner.(*agent.ApproximateQAgent[gridworld.State]); ok {
			out.Weights = a.Weights()
		}
		if buf != nil {
			out.Transitions = transitionRecords(buf.GetLatest(req.RecordTransitions))
		}
		return out, nil
	})
}

// Compare runs value iteration and tabular Q-learning on the same grid with
// the classic hyperparameters: discount 0.9, and epsilon 0.3 with alpha 0.5
// for the learner.
func (r *Runner) Compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	world, err := newGridworld(req.Grid, req.Noise, 0)
	if err != nil {
		return nil, err
	}
	seed, envRng, agentRng := seeded(req.Seed)
	env, err := gridworld.NewEnv(world, envRng)
	if err != nil {
		return nil, err
	}

	return execute(ctx, r, r.newRun(KindCompare), req.Grid, AlgorithmValueIteration+","+AlgorithmQLearning, func(rn run) (*CompareResult, error) {
		sol, err := agent.Solve[gridworld.State](ctx, world, agent.ValueIterationConfig{
			Discount:     0.9,
			Iterations:   req.Iterations,
			ExperimentID: rn.id,
			Publisher:    r.publisher,
			Logger:       rn.logger,
		})
		if err != nil {
			return nil, err
		}

		learner, err := agent.NewQLearningAgent[gridworld.State](env.PossibleActions, agent.Config{
			Epsilon:  0.3,
			Alpha:    0.5,
			Discount: 0.9,
			Logger:   rn.logger,
		}, agentRng)
		if err != nil {
			return nil, err
		}
		if _, err := agent.Train[gridworld.State](ctx, env, learner, agent.TrainOptions[gridworld.State]{
			Episodes:     req.Episodes,
			MaxSteps:     req.MaxSteps,
			ExperimentID: rn.id,
			Publisher:    r.publisher,
			Logger:       rn.logger,
		}); err != nil {
			return nil, err
		}

		vi := tabulate(world, solverEstimates{sol: sol})
		ql := tabulate(world, learner)
		return &CompareResult{
			ExperimentID: rn.id,
			Grid:         req.Grid,
			Seed:         seed,
			Comparisons: []Comparison{
				{Algorithm: "Value Iteration", Iterations: req.Iterations, Values: vi.values, Policy: vi.policy},
				{Algorithm: "Q-Learning", Episodes: req.Episodes, Values: ql.values, Policy: ql.policy},
			},
			GridData:        gridData(world, nil),
			PolicyAgreement: agreement(vi.policy, ql.policy),
		}, nil
	})
}

// agreement is the fraction of keys of a mapped to the same action in b.
func agreement(a, b map[string]string) float64 {
	if len(a) == 0 {
		return 0
	}
	same := 0
	for k, v := range a {
		if b[k] == v {
			same++
		}
	}
	return float64(same) / float64(len(a))
}
