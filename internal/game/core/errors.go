package core

import "errors"

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrWallCollision      = errors.New("move runs into a wall")
	ErrGameOver           = errors.New("game is over")
	ErrIllegalMove        = errors.New("move is not legal")
)
