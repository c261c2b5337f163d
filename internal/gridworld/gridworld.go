// Package gridworld implements the classic noisy grid MDP: an agent moves
// between cells, walls block movement, and terminal cells pay their reward
// through a single exit action.
package gridworld

import (
	"fmt"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// DefaultNoise is the probability mass spread over the perpendicular moves.
const DefaultNoise = 0.2

// State is a grid position, or the absorbing terminal sentinel.
type State struct {
	X, Y     int
	Terminal bool
}

// TerminalState is entered after taking the exit action.
var TerminalState = State{X: -1, Y: -1, Terminal: true}

// At returns the non-terminal state at (x, y).
func At(x, y int) State {
	return State{X: x, Y: y}
}

func (s State) String() string {
	if s.Terminal {
		return "TERMINAL_STATE"
	}
	return fmt.Sprintf("(%d, %d)", s.X, s.Y)
}

var moveActions = []mdp.Action{mdp.North, mdp.West, mdp.South, mdp.East}

// Gridworld is the model of a grid. Noise and living reward are read on every
// query, so changing them takes effect immediately.
type Gridworld struct {
	grid         *Grid
	noise        float64
	livingReward float64
}

// New wraps grid with the default noise and a zero living reward.
func New(grid *Grid) *Gridworld {
	return &Gridworld{grid: grid, noise: DefaultNoise}
}

func (w *Gridworld) Grid() *Grid { return w.grid }
func (w *Gridworld) Noise() float64 { return w.noise }
func (w *Gridworld) LivingReward() float64 { return w.livingReward }
func (w *Gridworld) SetNoise(noise float64) { w.noise = noise }

// SetLivingReward sets the reward paid for every non-exit step.
func (w *Gridworld) SetLivingReward(reward float64) { w.livingReward = reward }

// StartState returns the cell marked S.
func (w *Gridworld) StartState() (State, error) {
	for x := 0; x < w.grid.width; x++ {
		for y := 0; y < w.grid.height; y++ {
			if w.grid.At(x, y).Kind == CellStart {
				return At(x, y), nil
			}
		}
	}
	return State{}, mdp.DegenerateError(mdp.ErrNoStartState, "gridworld")
}

// States lists the terminal sentinel followed by every non-wall cell.
func (w *Gridworld) States() []State {
	states := []State{TerminalState}
	for x := 0; x < w.grid.width; x++ {
		for y := 0; y < w.grid.height; y++ {
			if w.grid.At(x, y).Kind != CellWall {
				states = append(states, At(x, y))
			}
		}
	}
	return states
}

// PossibleActions returns {exit} on reward cells, nothing for the sentinel,
// and north, west, south, east everywhere else. The order is the tie-break
// order used by greedy action selection.
func (w *Gridworld) PossibleActions(s State) []mdp.Action {
	if s.Terminal {
		return nil
	}
	switch w.grid.At(s.X, s.Y).Kind {
	case CellWall:
		return nil
	case CellTerminal:
		return []mdp.Action{mdp.Exit}
	}
	actions := make([]mdp.Action, len(moveActions))
	copy(actions, moveActions)
	return actions
}

// IsTerminal reports whether s is the absorbing sentinel.
func (w *Gridworld) IsTerminal(s State) bool {
	return s.Terminal
}

// Reward pays a reward cell's value on exit and the living reward for every
// other move.
func (w *Gridworld) Reward(s State, _ mdp.Action, _ State) float64 {
	if s.Terminal {
		return 0
	}
	if cell := w.grid.At(s.X, s.Y); cell.Kind == CellTerminal {
		return cell.Reward
	}
	return w.livingReward
}

// TransitionStatesAndProbs returns the successor distribution of a legal
// action. Illegal actions have no successors.
func (w *Gridworld) TransitionStatesAndProbs(s State, a mdp.Action) []mdp.Transition[State] {
	if !mdp.Contains(w.PossibleActions(s), a) {
		return nil
	}
	if a == mdp.Exit {
		return []mdp.Transition[State]{{State: TerminalState, Probability: 1}}
	}

	north := w.moveFrom(s, 0, 1)
	south := w.moveFrom(s, 0, -1)
	west := w.moveFrom(s, -1, 0)
	east := w.moveFrom(s, 1, 0)

	straight, side := 1-w.noise, w.noise/2
	var raw []mdp.Transition[State]
	switch a {
	case mdp.North:
		raw = []mdp.Transition[State]{tr(north, straight), tr(west, side), tr(east, side)}
	case mdp.South:
		raw = []mdp.Transition[State]{tr(south, straight), tr(west, side), tr(east, side)}
	case mdp.West:
		raw = []mdp.Transition[State]{tr(west, straight), tr(north, side), tr(south, side)}
	case mdp.East:
		raw = []mdp.Transition[State]{tr(east, straight), tr(north, side), tr(south, side)}
	}
	return aggregate(raw)
}

func tr(s State, p float64) mdp.Transition[State] {
	return mdp.Transition[State]{State: s, Probability: p}
}

// moveFrom returns the neighbour at (dx, dy), or s itself when that square
// is a wall or off the board.
func (w *Gridworld) moveFrom(s State, dx, dy int) State {
	nx, ny := s.X+dx, s.Y+dy
	if w.grid.At(nx, ny).Kind == CellWall {
		return s
	}
	return At(nx, ny)
}

// aggregate merges duplicate successors, keeping first-seen order, and drops
// zero-probability entries.
func aggregate(raw []mdp.Transition[State]) []mdp.Transition[State] {
	out := make([]mdp.Transition[State], 0, len(raw))
	index := make(map[State]int, len(raw))
	for _, t := range raw {
		if t.Probability == 0 {
			continue
		}
		if i, ok := index[t.State]; ok {
			out[i].Probability += t.Probability
			continue
		}
		index[t.State] = len(out)
		out = append(out, t)
	}
	return out
}
