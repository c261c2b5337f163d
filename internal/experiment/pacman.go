package experiment

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/layout"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/pacman"
)

// RunPacman trains an agent on a layout for NumTraining games and reports
// the NumGames evaluation games that follow.
func (r *Runner) RunPacman(ctx context.Context, req PacmanRequest) (*PacmanResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Agent == "" {
		req.Agent = AgentPacmanQ
	}
	if req.Ghost == "" {
		req.Ghost = "random"
	}

	l, err := layout.Get(req.Layout)
	if err != nil {
		return nil, err
	}
	ghost, ok := game.GhostByName(req.Ghost)
	if !ok {
		return nil, mdp.UnknownNameError("ghost", req.Ghost)
	}
	ghosts := make([]game.GhostAgent, l.NumGhosts())
	for i := range ghosts {
		ghosts[i] = ghost
	}
	algorithm, err := pacmanAlgorithm(req.Agent)
	if err != nil {
		return nil, err
	}

	seed, engineRng, agentRng := seeded(req.Seed)
	rn := r.newRun(KindPacman)

	// The learner is built before the run starts so that bad hyperparameters
	// are rejected without side effects. The environment is bound afterwards
	// through env.
	var env *pacman.Env
	actions := func(s game.State) []mdp.Action { return env.PossibleActions(s) }
	cfg := agent.Config{
		Epsilon:  req.Epsilon,
		Alpha:    req.Alpha,
		Discount: req.Discount,
		Logger:   rn.logger,
	}
	// Evaluation games are played by a frozen learner. Train freezes it by
	// episode index, so abandoned training games do not delay the switch.
	evaluate := req.NumGames

	var learner agent.Learner[game.State]
	var approx *agent.ApproximateQAgent[game.State]
	switch req.Agent {
	case AgentPacmanQ:
		learner, err = agent.NewQLearningAgent[game.State](actions, cfg, agentRng)
	case AgentApproximateQ:
		approx, err = agent.NewApproximateQAgent[game.State](actions, pacman.NewSimpleExtractor(l.Board), cfg, agentRng)
		learner = approx
	case AgentRandom:
		learner, err = agent.NewRandomAgent[game.State](actions, agentRng, rn.logger)
		evaluate = 0
	}
	if err != nil {
		return nil, err
	}

	return execute(ctx, r, rn, req.Layout, algorithm, func(rn run) (*PacmanResult, error) {
		engine, err := game.NewEngine(game.Config{
			Layout: l,
			Ghosts: ghosts,
			Rng:    engineRng,
			GameID: rn.id,
			Logger: rn.logger,
		})
		if err != nil {
			return nil, err
		}
		env = pacman.NewEnv(engine, rn.logger)

		onError := agent.StopOnError
		if req.ContinueOnError {
			onError = agent.ContinueOnError
		}
		res, err := agent.Train[game.State](ctx, env, learner, agent.TrainOptions[game.State]{
			Episodes:      req.NumTraining + req.NumGames,
			Evaluate:      evaluate,
			MaxSteps:      req.MaxSteps,
			OnEngineError: onError,
			Sampler:       agent.EveryPercent(agent.DefaultReportPercent),
			ExperimentID:  rn.id,
			Publisher:     r.publisher,
			Logger:        rn.logger,
		})
		if err != nil {
			return nil, err
		}

		out := &PacmanResult{
			ExperimentID: rn.id,
			Layout:       req.Layout,
			Agent:        req.Agent,
			Ghost:        req.Ghost,
			NumTraining:  req.NumTraining,
			NumGames:     req.NumGames,
			Seed:         seed,
			Games:        []GameResult{},
		}

		var sampled []agent.EpisodeStats[game.State]
		for _, ep := range res.Reports {
			if ep.Episode < req.NumTraining {
				sampled = append(sampled, ep)
			}
		}
		out.TrainingHistory = episodeReports(sampled)

		var scores []float64
		for _, ep := range res.Episodes {
			if ep.Episode < req.NumTraining {
				continue
			}
			if ep.Err != nil {
				out.Summary.Abandoned++
				continue
			}

			final := ep.FinalState
			g := GameResult{
				GameIndex:  len(out.Games),
				Score:      final.Score,
				IsWin:      final.Win,
				IsLose:     final.Lose,
				Steps:      ep.Steps,
				FinalState: gameState(l, final),
			}
			out.Games = append(out.Games, g)
			scores = append(scores, float64(final.Score))
			if g.IsWin {
				out.Summary.Wins++
			}
			if g.IsLose {
				out.Summary.Losses++
			}
			r.publisher.Publish(events.NewGameEndedEvent(rn.id, g.GameIndex, g.Score, g.IsWin, g.Steps))
		}
		if len(scores) > 0 {
			out.Summary.AvgScore = stat.Mean(scores, nil)
		}
		if approx != nil {
			out.Weights = approx.Weights()
		}
		return out, nil
	})
}

func pacmanAlgorithm(agentID string) (string, error) {
	switch agentID {
	case AgentPacmanQ:
		return AlgorithmQLearning, nil
	case AgentApproximateQ:
		return AlgorithmApproximateQLearning, nil
	case AgentRandom:
		return AgentRandom, nil
	}
	return "", mdp.UnknownNameError("pacman agent", agentID)
}
