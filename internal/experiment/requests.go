package experiment

import (
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// Feature extractors available to gridworld approximate Q-learning.
const (
	ExtractorIdentity    = "identity"
	ExtractorCoordinates = "coordinates"
)

// ValueIterationRequest solves a named gridworld.
type ValueIterationRequest struct {
	Grid         string  `json:"grid"`
	Iterations   int     `json:"iterations"`
	Discount     float64 `json:"discount"`
	Noise        float64 `json:"noise"`
	LivingReward float64 `json:"livingReward"`

	// MaxMagnitude stops the solver with a divergence error once any |V|
	// exceeds it. 0 disables the guard.
	MaxMagnitude float64 `json:"maxMagnitude,omitempty"`
}

// QLearningRequest trains a Q-learner on a named gridworld.
type QLearningRequest struct {
	Grid               string  `json:"grid"`
	Agent              string  `json:"agent"`
	Extractor          string  `json:"extractor,omitempty"`
	Episodes           int     `json:"episodes"`
	Epsilon            float64 `json:"epsilon"`
	Alpha              float64 `json:"alpha"`
	Discount           float64 `json:"discount"`
	Noise              float64 `json:"noise"`
	LivingReward       float64 `json:"livingReward"`
	MaxSteps           int     `json:"maxSteps"`
	ReportEveryPercent float64 `json:"reportEveryPercent"`

	// Seed drives both the environment and exploration. 0 picks one from
	// the clock; the seed used is echoed in the result.
	Seed int64 `json:"seed,omitempty"`

	// RecordTransitions keeps the last n learned transitions in the result.
	RecordTransitions int `json:"recordTransitions,omitempty"`
}

// PacmanRequest trains an agent for NumTraining games, then plays NumGames
// evaluation games with learning switched off.
type PacmanRequest struct {
	Layout          string  `json:"layout"`
	Agent           string  `json:"agent"`
	Ghost           string  `json:"ghost"`
	NumTraining     int     `json:"numTraining"`
	NumGames        int     `json:"numGames"`
	Epsilon         float64 `json:"epsilon"`
	Alpha           float64 `json:"alpha"`
	Discount        float64 `json:"discount"`
	MaxSteps        int     `json:"maxSteps"`
	ContinueOnError bool    `json:"continueOnError"`
	Seed            int64   `json:"seed,omitempty"`
}

// CompareRequest runs value iteration and Q-learning on the same grid.
type CompareRequest struct {
	Grid       string  `json:"grid"`
	Iterations int     `json:"iterations"`
	Episodes   int     `json:"episodes"`
	Noise      float64 `json:"noise"`
	MaxSteps   int     `json:"maxSteps"`
	Seed       int64   `json:"seed,omitempty"`
}

// DefaultValueIterationRequest fills a request from cfg.
func DefaultValueIterationRequest(cfg *config.Config) ValueIterationRequest {
	return ValueIterationRequest{
		Grid:         cfg.Gridworld.Grid,
		Iterations:   cfg.ValueIteration.Iterations,
		Discount:     cfg.ValueIteration.Discount,
		Noise:        cfg.Gridworld.Noise,
		LivingReward: cfg.Gridworld.LivingReward,
		MaxMagnitude: cfg.ValueIteration.MaxMagnitude,
	}
}

// DefaultQLearningRequest fills a request from cfg.
func DefaultQLearningRequest(cfg *config.Config) QLearningRequest {
	return QLearningRequest{
		Grid:               cfg.Gridworld.Grid,
		Agent:              AgentQLearning,
		Extractor:          ExtractorIdentity,
		Episodes:           cfg.QLearning.Episodes,
		Epsilon:            cfg.QLearning.Epsilon,
		Alpha:              cfg.QLearning.Alpha,
		Discount:           cfg.QLearning.Discount,
		Noise:              cfg.Gridworld.Noise,
		LivingReward:       cfg.Gridworld.LivingReward,
		MaxSteps:           cfg.QLearning.MaxSteps,
		ReportEveryPercent: cfg.QLearning.ReportEveryPercent,
		Seed:               cfg.Gridworld.Seed,
	}
}

// DefaultPacmanRequest fills a request from cfg.
func DefaultPacmanRequest(cfg *config.Config) PacmanRequest {
	return PacmanRequest{
		Layout:          cfg.Pacman.Layout,
		Agent:           cfg.Pacman.Agent,
		Ghost:           cfg.Pacman.Ghost,
		NumTraining:     cfg.Pacman.NumTraining,
		NumGames:        cfg.Pacman.NumGames,
		Epsilon:         cfg.Pacman.Epsilon,
		Alpha:           cfg.Pacman.Alpha,
		Discount:        cfg.Pacman.Discount,
		MaxSteps:        cfg.Pacman.MaxSteps,
		ContinueOnError: cfg.Pacman.ContinueOnError,
	}
}

// DefaultCompareRequest fills a request from cfg.
func DefaultCompareRequest(cfg *config.Config) CompareRequest {
	return CompareRequest{
		Grid:       cfg.Gridworld.Grid,
		Iterations: cfg.ValueIteration.Iterations,
		Episodes:   cfg.QLearning.Episodes,
		Noise:      cfg.Gridworld.Noise,
		MaxSteps:   cfg.QLearning.MaxSteps,
		Seed:       cfg.Gridworld.Seed,
	}
}

func (r ValueIterationRequest) validate() error {
	if !common.IsProbability(r.Noise) {
		return mdp.ConfigError("noise must be in [0, 1], got %v", r.Noise)
	}
	if !common.IsRate(r.Discount) {
		return mdp.ConfigError("discount must be in (0, 1], got %v", r.Discount)
	}
	if r.Iterations < 0 {
		return mdp.ConfigError("iterations must be non-negative, got %d", r.Iterations)
	}
	return nil
}

func (r QLearningRequest) validate() error {
	if !common.IsProbability(r.Noise) {
		return mdp.ConfigError("noise must be in [0, 1], got %v", r.Noise)
	}
	if r.Episodes < 0 {
		return mdp.ConfigError("episodes must be non-negative, got %d", r.Episodes)
	}
	if r.ReportEveryPercent < 0 || r.ReportEveryPercent > 100 {
		return mdp.ConfigError("report percent must be in [0, 100], got %v", r.ReportEveryPercent)
	}
	if r.RecordTransitions < 0 {
		return mdp.ConfigError("record transitions must be non-negative, got %d", r.RecordTransitions)
	}
	return nil
}

func (r PacmanRequest) validate() error {
	if r.NumTraining < 0 {
		return mdp.ConfigError("numTraining must be non-negative, got %d", r.NumTraining)
	}
	if r.NumGames < 0 {
		return mdp.ConfigError("numGames must be non-negative, got %d", r.NumGames)
	}
	return nil
}

func (r CompareRequest) validate() error {
	if !common.IsProbability(r.Noise) {
		return mdp.ConfigError("noise must be in [0, 1], got %v", r.Noise)
	}
	if r.Iterations < 0 {
		return mdp.ConfigError("iterations must be non-negative, got %d", r.Iterations)
	}
	if r.Episodes < 0 {
		return mdp.ConfigError("episodes must be non-negative, got %d", r.Episodes)
	}
	return nil
}
