package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ringBoard is a 3x3 board with walls all around a single open centre.
func ringBoard() *Board {
	b := NewBoard(3, 3)
	for i := range b.T {
		if i != b.Idx(1, 1) {
			b.T[i].Type = TileWall
		}
	}
	return b
}

func TestBoard_Walls(t *testing.T) {
	b := NewBoard(4, 2)
	b.SetWall(0, 0)
	b.SetWall(9, 9)

	assert.True(t, b.IsWall(Coordinate{0, 0}))
	assert.False(t, b.IsWall(Coordinate{1, 0}))
	assert.True(t, b.IsWall(Coordinate{-1, 0}), "off-board reads as wall")
	assert.True(t, b.IsWall(Coordinate{4, 1}))
	assert.Nil(t, b.GetTile(4, 0))

	walls := b.Walls()
	require.Len(t, walls, 4)
	require.Len(t, walls[0], 2)
	assert.True(t, walls[0][0])
	assert.False(t, walls[3][1])
}

func TestBoard_IdxXY(t *testing.T) {
	b := NewBoard(5, 3)
	idx := b.Idx(3, 2)
	assert.Equal(t, 13, idx)
	x, y := b.XY(idx)
	assert.Equal(t, 3, x)
	assert.Equal(t, 2, y)
	assert.Equal(t, 4, b.Distance(0, 0, 3, 1))
}

func TestBoard_OpenNeighbors(t *testing.T) {
	b := ringBoard()
	assert.Empty(t, b.OpenNeighbors(Coordinate{1, 1}))

	open := NewBoard(3, 3)
	assert.Equal(t, []Coordinate{{1, 2}, {1, 0}, {2, 1}, {0, 1}}, open.OpenNeighbors(Coordinate{1, 1}))
	assert.Equal(t, []Coordinate{{0, 1}, {1, 0}}, open.OpenNeighbors(Coordinate{0, 0}))
}

func TestApplyMove(t *testing.T) {
	b := NewBoard(3, 1)
	b.SetWall(2, 0)

	to, err := ApplyMove(b, Coordinate{0, 0}, East)
	require.NoError(t, err)
	assert.Equal(t, Coordinate{1, 0}, to)

	to, err = ApplyMove(b, Coordinate{1, 0}, East)
	assert.ErrorIs(t, err, ErrWallCollision)
	assert.Equal(t, Coordinate{1, 0}, to)

	to, err = ApplyMove(b, Coordinate{1, 0}, Stop)
	require.NoError(t, err)
	assert.Equal(t, Coordinate{1, 0}, to)

	_, err = ApplyMove(b, Coordinate{5, 0}, West)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = ApplyMove(b, Coordinate{0, 0}, Direction(7))
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestBitmap(t *testing.T) {
	m := BitmapOf(20, 0, 7, 8, 19)
	assert.Len(t, m, 3)
	assert.Equal(t, 4, m.Count())
	assert.True(t, m.Has(8))
	assert.False(t, m.Has(9))
	assert.False(t, m.Has(-1))
	assert.False(t, m.Has(100))
	assert.Equal(t, []int{0, 7, 8, 19}, m.Indices())

	n := m.Without(7)
	assert.True(t, m.Has(7), "Without leaves the receiver untouched")
	assert.False(t, n.Has(7))
	assert.Equal(t, 3, n.Count())
	assert.Equal(t, n, n.Without(7))

	assert.Equal(t, BitmapOf(20, 0, 8, 19), n, "bitmaps compare by value")
	assert.Equal(t, 0, NewBitmap(10).Count())
}

func TestIntToStringFixedWidth(t *testing.T) {
	assert.Equal(t, "  7", IntToStringFixedWidth(7, 3))
	assert.Equal(t, "1234", IntToStringFixedWidth(1234, 2))
}
