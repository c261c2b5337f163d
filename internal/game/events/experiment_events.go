package events

import (
	"time"
)

// Event type constants
const (
	TypeExperimentStarted   = "experiment.started"
	TypeExperimentCompleted = "experiment.completed"
	TypeSweepCompleted      = "sweep.completed"
	TypeEpisodeCompleted    = "episode.completed"
	TypeEpisodeAbandoned    = "episode.abandoned"
	TypeGameEnded           = "game.ended"
)

// ExperimentStartedEvent is published when the orchestrator starts a run
type ExperimentStartedEvent struct {
	BaseEvent
	Kind        string
	Environment string
	Algorithm   string
}

// NewExperimentStartedEvent creates a new ExperimentStartedEvent
func NewExperimentStartedEvent(experimentID, kind, environment, algorithm string) *ExperimentStartedEvent {
	return &ExperimentStartedEvent{
		BaseEvent:   newBase(TypeExperimentStarted, experimentID),
		Kind:        kind,
		Environment: environment,
		Algorithm:   algorithm,
	}
}

// ExperimentCompletedEvent is published when a run returns, successfully or not
type ExperimentCompletedEvent struct {
	BaseEvent
	Kind     string
	Duration time.Duration
	Error    string
}

// NewExperimentCompletedEvent creates a new ExperimentCompletedEvent
func NewExperimentCompletedEvent(experimentID, kind string, duration time.Duration, err error) *ExperimentCompletedEvent {
	e := &ExperimentCompletedEvent{
		BaseEvent: newBase(TypeExperimentCompleted, experimentID),
		Kind:      kind,
		Duration:  duration,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// SweepCompletedEvent is published after each value iteration sweep
type SweepCompletedEvent struct {
	BaseEvent
	Sweep    int
	Residual float64
}

// NewSweepCompletedEvent creates a new SweepCompletedEvent
func NewSweepCompletedEvent(experimentID string, sweep int, residual float64) *SweepCompletedEvent {
	return &SweepCompletedEvent{
		BaseEvent: newBase(TypeSweepCompleted, experimentID),
		Sweep:     sweep,
		Residual:  residual,
	}
}

// EpisodeCompletedEvent is published after every finished training episode
type EpisodeCompletedEvent struct {
	BaseEvent
	Episode     int
	TotalReward float64
	Steps       int
	Terminated  bool
	Training    bool
}

// NewEpisodeCompletedEvent creates a new EpisodeCompletedEvent
func NewEpisodeCompletedEvent(experimentID string, episode int, totalReward float64, steps int, terminated, training bool) *EpisodeCompletedEvent {
	return &EpisodeCompletedEvent{
		BaseEvent:   newBase(TypeEpisodeCompleted, experimentID),
		Episode:     episode,
		TotalReward: totalReward,
		Steps:       steps,
		Terminated:  terminated,
		Training:    training,
	}
}

// EpisodeAbandonedEvent is published when an engine failure aborts an episode
type EpisodeAbandonedEvent struct {
	BaseEvent
	Episode int
	Reason  string
}

// NewEpisodeAbandonedEvent creates a new EpisodeAbandonedEvent
func NewEpisodeAbandonedEvent(experimentID string, episode int, reason error) *EpisodeAbandonedEvent {
	return &EpisodeAbandonedEvent{
		BaseEvent: newBase(TypeEpisodeAbandoned, experimentID),
		Episode:   episode,
		Reason:    reason.Error(),
	}
}

// GameEndedEvent is published when a Pacman game finishes
type GameEndedEvent struct {
	BaseEvent
	Game  int
	Score int
	Win   bool
	Moves int
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(experimentID string, game, score int, win bool, moves int) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, experimentID),
		Game:      game,
		Score:     score,
		Win:       win,
		Moves:     moves,
	}
}
