package game

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/rules"
)

// TurnProcessor handles the orchestration of a single turn
type TurnProcessor struct {
	engine *Engine
	logger zerolog.Logger
}

// NewTurnProcessor creates a new turn processor
func NewTurnProcessor(engine *Engine) *TurnProcessor {
	return &TurnProcessor{
		engine: engine,
		logger: engine.logger,
	}
}

// ProcessTurn executes a complete game turn: the Pacman phase, then one
// phase per ghost. The turn stops as soon as the game is decided.
func (tp *TurnProcessor) ProcessTurn(direction core.Direction) (StepResult, error) {
	e := tp.engine
	if e.gameOver {
		return StepResult{State: e.state}, core.ErrGameOver
	}
	if !tp.isLegal(direction) {
		return StepResult{State: e.state}, fmt.Errorf("%w: %s from %s", core.ErrIllegalMove, direction, e.state.Pacman)
	}

	startScore := e.state.Score
	res := StepResult{}

	tp.processPacmanPhase(direction, &res)
	for i := 0; i < e.state.NumGhosts && res.Outcome == rules.OutcomeNone; i++ {
		tp.processGhostPhase(i, &res)
	}

	e.stats.Moves++
	res.State = e.state
	res.ScoreChange = e.state.Score - startScore

	if res.Outcome != rules.OutcomeNone {
		e.gameOver = true
		tp.logger.Debug().
			Int("score", e.state.Score).
			Int("moves", e.stats.Moves).
			Str("outcome", res.Outcome.String()).
			Msg("Game finished")
	}
	return res, nil
}

func (tp *TurnProcessor) isLegal(direction core.Direction) bool {
	for _, d := range tp.engine.LegalPacmanMoves(tp.engine.state.Pacman) {
		if d == direction {
			return true
		}
	}
	return false
}

func (tp *TurnProcessor) processPacmanPhase(direction core.Direction, res *StepResult) {
	e := tp.engine
	s := &e.state

	s.Score -= TimePenalty
	if next, err := core.ApplyMove(e.board, s.Pacman, direction); err == nil {
		s.Pacman = next
	}

	idx := e.board.Idx(s.Pacman.X, s.Pacman.Y)
	if s.Food.Has(idx) {
		s.Food = s.Food.Without(idx)
		s.Score += FoodScore
		e.stats.FoodEaten++
		res.FoodEaten = true
	}
	if s.Capsules.Has(idx) {
		s.Capsules = s.Capsules.Without(idx)
		for i := 0; i < s.NumGhosts; i++ {
			s.Scared[i] = ScaredTime
		}
		e.stats.CapsulesEaten++
		res.CapsuleEaten = true
	}

	tp.resolveCollisions(res)
}

func (tp *TurnProcessor) processGhostPhase(i int, res *StepResult) {
	e := tp.engine
	s := &e.state

	legal := e.legalMoves.GhostMoves(e.board, s.Ghosts[i], e.headings[i])
	if len(legal) > 0 {
		view := GhostView{Index: i, Position: s.Ghosts[i], Pacman: s.Pacman, Scared: s.Scared[i] > 0}
		direction := e.ghosts[i].ChooseDirection(view, legal, e.rng)
		if next, err := core.ApplyMove(e.board, s.Ghosts[i], direction); err == nil {
			s.Ghosts[i] = next
			e.headings[i] = direction
		} else {
			tp.logger.Warn().Err(err).Int("ghost", i).Str("direction", direction.String()).Msg("Ghost move rejected")
		}
	}
	if s.Scared[i] > 0 {
		s.Scared[i]--
	}

	tp.resolveCollisions(res)
}

// resolveCollisions eats scared ghosts sharing Pacman's cell and decides the
// game.
func (tp *TurnProcessor) resolveCollisions(res *StepResult) {
	e := tp.engine
	s := &e.state

	caught := false
	for i := 0; i < s.NumGhosts; i++ {
		if s.Ghosts[i] != s.Pacman {
			continue
		}
		if s.Scared[i] > 0 {
			s.Score += GhostScore
			s.Ghosts[i] = e.layout.GhostStarts[i]
			s.Scared[i] = 0
			e.headings[i] = core.Stop
			e.stats.GhostsEaten++
			res.GhostsEaten++
			continue
		}
		caught = true
	}

	switch e.winCondition.CheckGameOver(s.FoodLeft(), caught) {
	case rules.OutcomeWin:
		if !s.Win {
			s.Score += WinBonus
			s.Win = true
		}
		res.Outcome = rules.OutcomeWin
	case rules.OutcomeLose:
		s.Score -= LosePenalty
		s.Lose = true
		res.Outcome = rules.OutcomeLose
	}
}
