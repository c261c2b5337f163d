package core

import (
	"fmt"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/common"
)

// Coordinate represents a position on the game board. X grows to the right
// and Y grows upward; row 0 is the bottom row of a layout.
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a board array index using row-major ordering
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return common.IsValidCoordinate(c.X, c.Y, width, height)
}

// ToIndex converts the coordinate to a board array index using row-major ordering
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// DistanceTo calculates the Manhattan distance to another coordinate
func (c Coordinate) DistanceTo(other Coordinate) int {
	dx := common.Abs(c.X - other.X)
	dy := common.Abs(c.Y - other.Y)
	return dx + dy
}

// IsAdjacentTo checks if this coordinate is orthogonally adjacent to another
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	return c.DistanceTo(other) == 1
}

// Neighbors returns the four orthogonal neighbors in North, South, East, West order
func (c Coordinate) Neighbors() []Coordinate {
	out := make([]Coordinate, 0, len(Moves))
	for _, d := range Moves {
		out = append(out, c.Move(d))
	}
	return out
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// Sub returns a new coordinate that is the difference between this coordinate and another
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X - other.X,
		Y: c.Y - other.Y,
	}
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction represents a cardinal direction, or standing still
type Direction int

const (
	North Direction = iota
	South
	East
	West
	Stop
)

// Moves lists the directions that change position, in the order legal
// actions are reported.
var Moves = []Direction{North, South, East, West}

// DirectionVectors provides coordinate offsets for each direction
var DirectionVectors = map[Direction]Coordinate{
	North: {X: 0, Y: 1},
	South: {X: 0, Y: -1},
	East:  {X: 1, Y: 0},
	West:  {X: -1, Y: 0},
	Stop:  {X: 0, Y: 0},
}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case South:
		return "South"
	case East:
		return "East"
	case West:
		return "West"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Reverse returns the opposite direction. Stop is its own reverse.
func (d Direction) Reverse() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return d
	}
}

// Move returns a new coordinate moved one step in the given direction
func (c Coordinate) Move(direction Direction) Coordinate {
	if offset, ok := DirectionVectors[direction]; ok {
		return c.Add(offset)
	}
	return c
}

// DirectionTo returns the direction from this coordinate to an adjacent coordinate
// Returns -1 if the coordinates are not adjacent
func (c Coordinate) DirectionTo(other Coordinate) Direction {
	if !c.IsAdjacentTo(other) {
		return -1
	}

	dx := other.X - c.X
	dy := other.Y - c.Y

	switch {
	case dy == 1:
		return North
	case dy == -1:
		return South
	case dx == 1:
		return East
	default:
		return West
	}
}
