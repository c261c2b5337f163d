package rules

import "github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"

// LegalMoveCalculator computes legal moves for Pacman and the ghosts
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// PacmanMoves returns every direction from pos that does not run into a
// wall, in North, South, East, West order, followed by Stop.
func (lmc *LegalMoveCalculator) PacmanMoves(board *core.Board, pos core.Coordinate) []core.Direction {
	moves := lmc.openMoves(board, pos)
	return append(moves, core.Stop)
}

// GhostMoves returns the directions a ghost at pos may take. Ghosts never
// stop and only reverse their heading when there is no other way to go.
func (lmc *LegalMoveCalculator) GhostMoves(board *core.Board, pos core.Coordinate, heading core.Direction) []core.Direction {
	moves := lmc.openMoves(board, pos)
	if len(moves) <= 1 || heading == core.Stop {
		return moves
	}

	reverse := heading.Reverse()
	out := moves[:0]
	for _, d := range moves {
		if d != reverse {
			out = append(out, d)
		}
	}
	return out
}

// GetLegalActionMask returns a mask over North, South, East, West, Stop with
// true for every legal Pacman move from pos.
func (lmc *LegalMoveCalculator) GetLegalActionMask(board *core.Board, pos core.Coordinate) []bool {
	mask := make([]bool, len(core.Moves)+1)
	for _, d := range lmc.PacmanMoves(board, pos) {
		mask[d] = true
	}
	return mask
}

func (lmc *LegalMoveCalculator) openMoves(board *core.Board, pos core.Coordinate) []core.Direction {
	moves := make([]core.Direction, 0, len(core.Moves)+1)
	for _, d := range core.Moves {
		if !board.IsWall(pos.Move(d)) {
			moves = append(moves, d)
		}
	}
	return moves
}
