package game

import (
	"strings"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
)

// Board symbols. Walls, food, capsules and Pacman use the layout alphabet.
const (
	WallSymbol        = '%'
	FoodSymbol        = '.'
	CapsuleSymbol     = 'o'
	PacmanSymbol      = 'P'
	GhostSymbol       = 'G'
	ScaredGhostSymbol = 'g'
	EmptySymbol       = ' '
)

// Board returns a text rendering of the current state, top row first,
// followed by the score.
func (e *Engine) Board() string {
	return RenderState(e.board, e.state)
}

// RenderState draws s on board.
func RenderState(board *core.Board, s State) string {
	var sb strings.Builder
	sb.Grow((board.W + 1) * (board.H + 1))

	for y := board.H - 1; y >= 0; y-- {
		for x := 0; x < board.W; x++ {
			sb.WriteByte(symbolAt(board, s, core.NewCoordinate(x, y)))
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("Score:")
	sb.WriteString(core.IntToStringFixedWidth(s.Score, 6))
	switch {
	case s.Win:
		sb.WriteString("  WIN")
	case s.Lose:
		sb.WriteString("  LOSE")
	}
	sb.WriteByte('\n')
	return sb.String()
}

func symbolAt(board *core.Board, s State, c core.Coordinate) byte {
	if board.IsWall(c) {
		return WallSymbol
	}
	for i := 0; i < s.NumGhosts; i++ {
		if s.Ghosts[i] == c {
			if s.Scared[i] > 0 {
				return ScaredGhostSymbol
			}
			return GhostSymbol
		}
	}
	if s.Pacman == c {
		return PacmanSymbol
	}

	idx := board.Idx(c.X, c.Y)
	switch {
	case s.Capsules.Has(idx):
		return CapsuleSymbol
	case s.Food.Has(idx):
		return FoodSymbol
	default:
		return EmptySymbol
	}
}
