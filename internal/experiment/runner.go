// Package experiment builds and runs learning experiments on request. Every
// run constructs its own environment and agent, so concurrent runs share
// nothing but the Runner's admission semaphore and sinks.
package experiment

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/monitoring"
)

// DefaultMaxConcurrent bounds concurrent runs when Options leaves it unset.
const DefaultMaxConcurrent = 4

// Options configures a Runner.
type Options struct {
	MaxConcurrent int
	Publisher     events.Publisher
	Monitor       *monitoring.ExperimentMonitor
	Reports       ReportSink
	Logger        zerolog.Logger
}

// Runner executes experiments. At most MaxConcurrent run at once; further
// calls wait for a slot or for their context to end.
type Runner struct {
	sem       chan struct{}
	publisher events.Publisher
	monitor   *monitoring.ExperimentMonitor
	reports   ReportSink
	// logger carries no component so that every component of a run can add
	// its own
	logger zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	return &Runner{
		sem:       make(chan struct{}, opts.MaxConcurrent),
		publisher: opts.Publisher,
		monitor:   opts.Monitor,
		reports:   opts.Reports,
		logger:    opts.Logger,
	}
}

// run identifies one experiment. Its logger carries the experiment ID and
// kind; components built for the run derive their loggers from it.
type run struct {
	id     string
	kind   string
	logger zerolog.Logger
}

// newRun assigns an ID before admission so that agents built while
// validating a request already log under it.
func (r *Runner) newRun(kind string) run {
	rn := run{id: uuid.New().String(), kind: kind}
	rn.logger = r.logger.With().
		Str("experiment_id", rn.id).
		Str("kind", kind).
		Logger()
	return rn
}

// execute is the lifecycle shared by every experiment: admission, events,
// monitoring and the optional report.
func execute[T any](ctx context.Context, r *Runner, rn run, environment, algorithm string, fn func(run) (T, error)) (T, error) {
	var zero T
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	defer func() { <-r.sem }()

	kind := rn.kind
	logger := rn.logger.With().Str("component", "experiment_runner").Logger()

	var end func(error)
	if r.monitor != nil {
		end = r.monitor.Begin(kind)
	}
	start := time.Now()
	logger.Info().
		Str("environment", environment).
		Str("algorithm", algorithm).
		Msg("Experiment started")
	r.publisher.Publish(events.NewExperimentStartedEvent(rn.id, kind, environment, algorithm))

	result, err := fn(rn)

	duration := time.Since(start)
	r.publisher.Publish(events.NewExperimentCompletedEvent(rn.id, kind, duration, err))
	if end != nil {
		end(err)
	}
	if err != nil {
		logger.Warn().Err(err).Dur("duration", duration).Msg("Experiment failed")
		return zero, err
	}
	logger.Info().Dur("duration", duration).Msg("Experiment completed")

	if r.reports != nil {
		if rerr := r.reports.Record(ctx, rn.id, kind, result); rerr != nil {
			logger.Warn().Err(rerr).Msg("Failed to write experiment report")
		}
	}
	return result, nil
}

// maxClockSeed keeps generated seeds exact when results pass through JSON
// numbers.
const maxClockSeed = 1 << 31

// seeded returns seed, or a clock-derived seed when it is 0, along with two
// independent generators for the environment and the agent.
func seeded(seed int64) (int64, *rand.Rand, *rand.Rand) {
	if seed == 0 {
		seed = time.Now().UnixNano()%maxClockSeed + 1
	}
	return seed, rand.New(rand.NewSource(seed)), rand.New(rand.NewSource(seed + 1))
}
