package core

import (
	"fmt"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

var directionActions = map[Direction]mdp.Action{
	North: mdp.North,
	South: mdp.South,
	East:  mdp.East,
	West:  mdp.West,
	Stop:  mdp.Stop,
}

// Action converts the direction into the agent-facing action
func (d Direction) Action() mdp.Action {
	return directionActions[d]
}

// DirectionOf converts an agent action into a direction. Exit and unknown
// actions are rejected.
func DirectionOf(a mdp.Action) (Direction, error) {
	for d, act := range directionActions {
		if act == a {
			return d, nil
		}
	}
	return Stop, fmt.Errorf("%w: %q", ErrInvalidDirection, a)
}

// Actions converts a list of directions, preserving order
func Actions(dirs []Direction) []mdp.Action {
	out := make([]mdp.Action, len(dirs))
	for i, d := range dirs {
		out[i] = d.Action()
	}
	return out
}
