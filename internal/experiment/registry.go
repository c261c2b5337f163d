package experiment

import (
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/layout"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/gridworld"
)

// Agent identifiers accepted by requests.
const (
	AgentValueIteration = "ValueIterationAgent"
	AgentQLearning      = "QLearningAgent"
	AgentPacmanQ        = "PacmanQAgent"
	AgentApproximateQ   = "ApproximateQAgent"
	AgentRandom         = "random"
)

// Algorithm identifiers used in metadata and events.
const (
	AlgorithmValueIteration       = "value_iteration"
	AlgorithmQLearning            = "qlearning"
	AlgorithmApproximateQLearning = "approximate_qlearning"
	AlgorithmDeepQLearning        = "deep_qlearning"
)

// Experiment kinds, as reported to the monitor and in events.
const (
	KindValueIteration = "value_iteration"
	KindQLearning      = "qlearning"
	KindPacman         = "pacman"
	KindCompare        = "compare"
)

// ListEnvironments returns the bundled Pacman layouts and gridworlds.
func ListEnvironments() EnvironmentList {
	return EnvironmentList{
		Layouts:    layout.Names(),
		Gridworlds: gridworld.Names(),
	}
}

// ListAgents returns the selectable agents.
func ListAgents() AgentList {
	return AgentList{
		PacmanAgents: []AgentInfo{
			{ID: AgentPacmanQ, Name: "Q-Learning Agent", Description: "Model-free temporal difference learning"},
			{ID: AgentApproximateQ, Name: "Approximate Q-Learning Agent", Description: "Feature-based function approximation"},
			{ID: AgentRandom, Name: "Random Agent", Description: "Makes random moves"},
		},
		GridworldAgents: []AgentInfo{
			{ID: AgentValueIteration, Name: "Value Iteration", Description: "Model-based dynamic programming"},
			{ID: AgentQLearning, Name: "Q-Learning", Description: "Model-free temporal difference learning"},
			{ID: AgentApproximateQ, Name: "Approximate Q-Learning", Description: "Linear Q-learning over identity or coordinate features"},
		},
	}
}

var algorithms = []AlgorithmInfo{
	{
		ID:          AlgorithmValueIteration,
		Name:        "Value Iteration",
		Category:    "Model-Based",
		Description: "Dynamic programming approach that computes optimal values by iteratively updating state values based on the Bellman equation.",
		Pros:        []string{"Guaranteed to converge to optimal policy", "Exact solution", "Works with complete MDP knowledge"},
		Cons:        []string{"Requires complete model of environment", "Computationally expensive for large state spaces"},
		Parameters:  []string{"discount (γ)", "iterations"},
		Equation:    "V(s) = max_a Σ P(s'|s,a)[R(s,a,s') + γV(s')]",
		Available:   true,
	},
	{
		ID:          AlgorithmQLearning,
		Name:        "Q-Learning",
		Category:    "Model-Free",
		Description: "Off-policy temporal difference learning algorithm that learns action-value function directly from experience.",
		Pros:        []string{"No model required", "Learns from exploration", "Can handle unknown environments"},
		Cons:        []string{"May converge slowly", "Exploration-exploitation tradeoff", "Large Q-table for complex states"},
		Parameters:  []string{"learning rate (α)", "discount (γ)", "exploration rate (ε)"},
		Equation:    "Q(s,a) ← Q(s,a) + α[r + γ max_a' Q(s',a') - Q(s,a)]",
		Available:   true,
	},
	{
		ID:          AlgorithmApproximateQLearning,
		Name:        "Approximate Q-Learning",
		Category:    "Function Approximation",
		Description: "Q-learning with feature-based function approximation, using weighted sum of features instead of tabular Q-values.",
		Pros:        []string{"Scales to large state spaces", "Generalizes across similar states", "More practical for complex problems"},
		Cons:        []string{"Feature engineering required", "May not converge in all cases", "Linear approximation limitations"},
		Parameters:  []string{"learning rate (α)", "discount (γ)", "exploration rate (ε)", "features"},
		Equation:    "Q(s,a) = Σ w_i × f_i(s,a)",
		Available:   true,
	},
	{
		ID:          AlgorithmDeepQLearning,
		Name:        "Deep Q-Learning (DQN)",
		Category:    "Deep Learning",
		Description: "Uses neural networks to approximate Q-values, enabling learning in high-dimensional state spaces.",
		Pros:        []string{"Handles complex state representations", "No manual feature engineering", "End-to-end learning"},
		Cons:        []string{"Requires significant training data", "Computationally expensive", "Hyperparameter sensitive"},
		Parameters:  []string{"learning rate", "discount (γ)", "replay buffer size", "target network update rate"},
		Equation:    "Q(s,a;θ) via neural network with experience replay and target networks",
		Available:   false,
	},
}

// Algorithms returns descriptive metadata for every algorithm. Entries that
// are not Available are described for comparison only and cannot be run.
func Algorithms() []AlgorithmInfo {
	out := make([]AlgorithmInfo, len(algorithms))
	copy(out, algorithms)
	return out
}

// Layout returns the details of a bundled Pacman layout.
func Layout(name string) (*LayoutDetails, error) {
	l, err := layout.Get(name)
	if err != nil {
		return nil, err
	}
	ghosts := make([][2]int, 0, l.NumGhosts())
	for _, g := range l.GhostStarts {
		ghosts = append(ghosts, pair(g))
	}
	capsules := make([][2]int, 0, len(l.Capsules))
	for _, c := range l.Capsules {
		capsules = append(capsules, pair(c))
	}
	return &LayoutDetails{
		Name:        l.Name,
		Width:       l.Width,
		Height:      l.Height,
		Walls:       l.Board.Walls(),
		Food:        l.FoodGrid(),
		Capsules:    capsules,
		NumGhosts:   l.NumGhosts(),
		PacmanStart: pair(l.PacmanStart),
		GhostStarts: ghosts,
	}, nil
}

func pair(c core.Coordinate) [2]int {
	return [2]int{c.X, c.Y}
}
