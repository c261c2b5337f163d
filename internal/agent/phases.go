package agent

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an episode operation is called in a
// phase that does not allow it.
var ErrInvalidTransition = errors.New("invalid phase transition")

// Phase is the episode lifecycle of a learning agent
type Phase int

const (
	// PhaseIdle - between episodes
	PhaseIdle Phase = iota

	// PhaseEpisodeRunning - an episode has been started and not yet stopped
	PhaseEpisodeRunning

	// PhaseStopped - final state, no more episodes
	PhaseStopped
)

// String returns the string representation of a Phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseEpisodeRunning:
		return "EpisodeRunning"
	case PhaseStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if no further transitions are possible
func (p Phase) IsTerminal() bool {
	return p == PhaseStopped
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p Phase) AllowedTransitions() []Phase {
	switch p {
	case PhaseIdle:
		return []Phase{PhaseEpisodeRunning, PhaseStopped}
	case PhaseEpisodeRunning:
		return []Phase{PhaseIdle}
	default:
		return []Phase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

func (p Phase) transitionTo(target Phase) (Phase, error) {
	if !p.CanTransitionTo(target) {
		return p, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p, target)
	}
	return target, nil
}
