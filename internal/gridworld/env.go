package gridworld

import (
	"math/rand"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// Env runs a Gridworld one sampled step at a time.
type Env struct {
	world   *Gridworld
	start   State
	current State
	rng     *rand.Rand
}

var _ mdp.Environment[State] = (*Env)(nil)

// NewEnv places an agent on the start cell of world. rng drives the sampling
// of noisy moves.
func NewEnv(world *Gridworld, rng *rand.Rand) (*Env, error) {
	start, err := world.StartState()
	if err != nil {
		return nil, err
	}
	return &Env{
		world:   world,
		start:   start,
		current: start,
		rng:     rng,
	}, nil
}

func (e *Env) World() *Gridworld { return e.world }
func (e *Env) CurrentState() State { return e.current }
func (e *Env) Reset() { e.current = e.start }

func (e *Env) PossibleActions(s State) []mdp.Action {
	return e.world.PossibleActions(s)
}

func (e *Env) IsTerminal(s State) bool {
	return e.world.IsTerminal(s)
}

// Step samples a successor of the current state under action.
func (e *Env) Step(action mdp.Action) (mdp.Outcome[State], error) {
	if e.current.Terminal {
		return mdp.Outcome[State]{}, mdp.DegenerateError(mdp.ErrTerminalState, "gridworld step %s", action)
	}

	successors := e.world.TransitionStatesAndProbs(e.current, action)
	if len(successors) == 0 {
		return mdp.Outcome[State]{}, mdp.DegenerateError(mdp.ErrIllegalAction, "gridworld step %s from %s", action, e.current)
	}

	next := sample(successors, e.rng.Float64())
	reward := e.world.Reward(e.current, action, next)
	e.current = next

	return mdp.Outcome[State]{
		Next:   next,
		Reward: reward,
		Done:   len(e.world.PossibleActions(next)) == 0,
	}, nil
}

// sample walks the cumulative distribution. Rounding slack falls on the last
// successor.
func sample(successors []mdp.Transition[State], r float64) State {
	sum := 0.0
	for _, t := range successors {
		sum += t.Probability
		if r < sum {
			return t.State
		}
	}
	return successors[len(successors)-1].State
}
