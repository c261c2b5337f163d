package core

// ApplyMove moves an agent at from one step in direction. Moving into a wall
// is rejected and leaves the agent where it was.
func ApplyMove(b *Board, from Coordinate, direction Direction) (Coordinate, error) {
	if !from.IsValid(b.W, b.H) {
		return from, ErrInvalidCoordinates
	}
	if _, ok := DirectionVectors[direction]; !ok {
		return from, ErrInvalidDirection
	}

	to := from.Move(direction)
	if b.IsWall(to) {
		return from, ErrWallCollision
	}
	return to, nil
}
