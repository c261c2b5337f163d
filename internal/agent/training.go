package agent

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// DefaultReportPercent is the sampling rate used when TrainOptions has no
// sampler: a report every 5% of the run.
const DefaultReportPercent = 5

// Learner is what Train drives. QAgent and the agents embedding it satisfy it.
type Learner[S comparable] interface {
	RunEpisode(env mdp.Environment[S], maxSteps int) (EpisodeStats[S], error)
	Checkpoint() func()
}

// Freezer is a learner that can stop exploring and learning for good.
type Freezer interface {
	Freeze()
}

// ErrorPolicy decides what Train does when the environment fails mid-episode.
type ErrorPolicy int

const (
	// ContinueOnError abandons the failed episode and keeps training.
	ContinueOnError ErrorPolicy = iota
	// StopOnError abandons the failed episode and returns the error.
	StopOnError
)

// ReportSampler decides whether episode (0-based) of total is reported.
type ReportSampler func(episode, total int) bool

// EveryPercent reports every max(1, total*pct/100) episodes, plus the final
// one.
func EveryPercent(pct float64) ReportSampler {
	return func(episode, total int) bool {
		interval := int(float64(total) * pct / 100)
		if interval < 1 {
			interval = 1
		}
		return episode%interval == 0 || episode == total-1
	}
}

// TrainOptions configures Train.
type TrainOptions[S comparable] struct {
	Episodes int
	// Evaluate is how many of the final episodes run with the learner
	// frozen. The learner must implement Freezer when it is positive.
	Evaluate int
	// MaxSteps caps each episode; <= 0 uses DefaultMaxSteps
	MaxSteps      int
	OnEngineError ErrorPolicy
	Sampler       ReportSampler

	// OnEpisode, when set, is called after every episode, abandoned ones
	// included.
	OnEpisode func(EpisodeStats[S])

	ExperimentID string
	Publisher    events.Publisher
	// Logger should already carry the run's context, such as its
	// experiment ID; Train only adds its component.
	Logger zerolog.Logger
}

// TrainingResult collects the outcome of Train.
type TrainingResult[S comparable] struct {
	Episodes  []EpisodeStats[S]
	Reports   []EpisodeStats[S]
	Completed int
	Abandoned int

	MeanReward float64
	StdReward  float64
	MeanSteps  float64
}

// Train runs opts.Episodes episodes of learner on env, resetting env before
// each one. ctx is checked between episodes only; on cancellation the
// partial result is returned with ctx's error.
//
// Engine errors abandon the episode and roll the learner back to its state at
// the start of that episode. Other errors from the episode stop training.
func Train[S comparable](ctx context.Context, env mdp.Environment[S], learner Learner[S], opts TrainOptions[S]) (*TrainingResult[S], error) {
	if opts.Episodes < 0 {
		return nil, mdp.ConfigError("episodes must be non-negative, got %d", opts.Episodes)
	}
	if opts.Evaluate < 0 || opts.Evaluate > opts.Episodes {
		return nil, mdp.ConfigError("evaluation episodes must be in [0, %d], got %d", opts.Episodes, opts.Evaluate)
	}
	freezer, canFreeze := learner.(Freezer)
	if opts.Evaluate > 0 && !canFreeze {
		return nil, mdp.ConfigError("learner cannot be frozen for evaluation")
	}
	if opts.Sampler == nil {
		opts.Sampler = EveryPercent(DefaultReportPercent)
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	logger := opts.Logger.With().Str("component", "trainer").Logger()
	freezeAt := opts.Episodes - opts.Evaluate

	result := &TrainingResult[S]{Episodes: make([]EpisodeStats[S], 0, opts.Episodes)}
	var runErr error

	for ep := 0; ep < opts.Episodes; ep++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if opts.Evaluate > 0 && ep == freezeAt {
			freezer.Freeze()
			logger.Info().Int("episode", ep).Msg("Training finished, evaluating frozen learner")
		}

		env.Reset()
		restore := learner.Checkpoint()
		stats, err := learner.RunEpisode(env, opts.MaxSteps)
		stats.Episode = ep

		if err != nil {
			if !mdp.IsKind(err, mdp.KindEngine) {
				runErr = err
				break
			}

			restore()
			stats.Err = err
			result.Abandoned++
			result.Episodes = append(result.Episodes, stats)
			logger.Warn().Err(err).Int("episode", ep).Msg("Episode abandoned after engine failure")
			opts.Publisher.Publish(events.NewEpisodeAbandonedEvent(opts.ExperimentID, ep, err))
			if opts.OnEpisode != nil {
				opts.OnEpisode(stats)
			}
			if opts.OnEngineError == StopOnError {
				runErr = err
				break
			}
			continue
		}

		result.Completed++
		result.Episodes = append(result.Episodes, stats)
		opts.Publisher.Publish(events.NewEpisodeCompletedEvent(opts.ExperimentID, ep, stats.TotalReward, stats.Steps, stats.Terminated, stats.Training))
		if opts.OnEpisode != nil {
			opts.OnEpisode(stats)
		}

		if opts.Sampler(ep, opts.Episodes) {
			result.Reports = append(result.Reports, stats)
			logger.Info().
				Int("episode", ep).
				Int("episodes", opts.Episodes).
				Float64("total_reward", stats.TotalReward).
				Int("steps", stats.Steps).
				Msg("Training progress")
		}
	}

	result.summarise()

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		logger.Error().Err(runErr).Int("completed", result.Completed).Msg("Training stopped")
	}
	return result, runErr
}

func (r *TrainingResult[S]) summarise() {
	rewards := make([]float64, 0, r.Completed)
	steps := make([]float64, 0, r.Completed)
	for _, s := range r.Episodes {
		if s.Err != nil {
			continue
		}
		rewards = append(rewards, s.TotalReward)
		steps = append(steps, float64(s.Steps))
	}

	switch len(rewards) {
	case 0:
		return
	case 1:
		r.MeanReward = rewards[0]
		r.MeanSteps = steps[0]
	default:
		r.MeanReward, r.StdReward = stat.MeanStdDev(rewards, nil)
		r.MeanSteps = stat.Mean(steps, nil)
	}
}
