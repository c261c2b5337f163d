package mdp

// Transition is one possible successor of a (state, action) pair.
type Transition[S comparable] struct {
	State       S
	Probability float64
}

// Outcome is what a single step of an environment produces.
type Outcome[S comparable] struct {
	Next   S
	Reward float64
	Done   bool
}

// Environment is the model-free surface used by the learners. A state with no
// possible actions is terminal.
type Environment[S comparable] interface {
	CurrentState() S
	PossibleActions(state S) []Action
	// Step applies action to the current state and advances it.
	Step(action Action) (Outcome[S], error)
	Reset()
	IsTerminal(state S) bool
}

// Model is the model-based surface used by the planner. Only finite,
// enumerable environments implement it.
type Model[S comparable] interface {
	States() []S
	PossibleActions(state S) []Action
	// TransitionStatesAndProbs lists successors with non-zero probability.
	// The probabilities of a legal action sum to 1.
	TransitionStatesAndProbs(state S, action Action) []Transition[S]
	Reward(state S, action Action, next S) float64
	IsTerminal(state S) bool
}
