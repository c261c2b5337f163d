package rules

import "github.com/rs/zerolog"

// Outcome is the result of a game
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLose
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	default:
		return "none"
	}
}

// WinConditionChecker handles game over detection
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver decides the game from the food left and whether Pacman was
// caught by a ghost that is not scared. Clearing the board takes precedence.
func (wc *WinConditionChecker) CheckGameOver(foodLeft int, caught bool) Outcome {
	outcome := OutcomeNone
	switch {
	case foodLeft == 0:
		outcome = OutcomeWin
	case caught:
		outcome = OutcomeLose
	}

	if outcome != OutcomeNone {
		wc.logger.Debug().
			Int("food_left", foodLeft).
			Bool("caught", caught).
			Str("outcome", outcome.String()).
			Msg("Game over")
	}
	return outcome
}
