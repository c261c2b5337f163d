// Package pacman exposes the Pacman game as a learning environment.
package pacman

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// Engine is the part of the game engine the environment drives.
type Engine interface {
	State() game.State
	LegalPacmanMoves(pos core.Coordinate) []core.Direction
	Step(direction core.Direction) (game.StepResult, error)
	Reset()
}

var _ Engine = (*game.Engine)(nil)

// Env is a model-free environment over a Pacman game. The reward of a step
// is the change in score.
type Env struct {
	engine Engine
	logger zerolog.Logger
}

var _ mdp.Environment[game.State] = (*Env)(nil)

// NewEnv wraps engine. The game is played from the engine's current state.
func NewEnv(engine Engine, logger zerolog.Logger) *Env {
	return &Env{
		engine: engine,
		logger: logger.With().Str("component", "pacman_env").Logger(),
	}
}

func (e *Env) CurrentState() game.State { return e.engine.State() }
func (e *Env) Reset()                   { e.engine.Reset() }
func (e *Env) IsTerminal(s game.State) bool {
	return s.IsTerminal()
}

// PossibleActions lists Pacman's legal moves in s, Stop last. Finished games
// have none.
func (e *Env) PossibleActions(s game.State) []mdp.Action {
	if s.IsTerminal() {
		return nil
	}
	return core.Actions(e.engine.LegalPacmanMoves(s.Pacman))
}

// Step plays one turn. Failures of the engine itself, panics included, are
// reported as engine errors so that a trainer can abandon the episode.
func (e *Env) Step(action mdp.Action) (outcome mdp.Outcome[game.State], err error) {
	if e.engine.State().IsTerminal() {
		return outcome, mdp.DegenerateError(mdp.ErrTerminalState, "pacman step %s", action)
	}
	direction, err := core.DirectionOf(action)
	if err != nil {
		return outcome, mdp.DegenerateError(mdp.ErrIllegalAction, "pacman step %s", action)
	}

	res, err := e.step(direction)
	switch {
	case errors.Is(err, core.ErrIllegalMove):
		return outcome, mdp.DegenerateError(mdp.ErrIllegalAction, "pacman step %s", action)
	case errors.Is(err, core.ErrGameOver):
		return outcome, mdp.DegenerateError(mdp.ErrTerminalState, "pacman step %s", action)
	case err != nil:
		e.logger.Warn().Err(err).Str("action", action.String()).Msg("Engine failed during step")
		return outcome, mdp.EngineError(err, "pacman step %s", action)
	}

	return mdp.Outcome[game.State]{
		Next:   res.State,
		Reward: float64(res.ScoreChange),
		Done:   res.State.IsTerminal(),
	}, nil
}

func (e *Env) step(direction core.Direction) (res game.StepResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return e.engine.Step(direction)
}
