package core

// Tile represents a single cell on the map.
type Tile struct {
	Type int
}

// Board holds the static walls of a layout. Food, capsules and agents live
// in the game state.
type Board struct {
	W, H int
	T    []Tile // length = W*H (row-major, row 0 at the bottom)
}

const (
	TileOpen = 0
	TileWall = 1
)

func (t *Tile) IsWall() bool { return t.Type == TileWall }

func NewBoard(w, h int) *Board {
	return &Board{W: w, H: h, T: make([]Tile, w*h)}
}

func (b *Board) Idx(x, y int) int      { return y*b.W + x }
func (b *Board) XY(idx int) (int, int) { return idx % b.W, idx / b.W }

// InBounds checks if coordinates are within board boundaries
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// GetTile safely returns a tile pointer if coordinates are valid, nil otherwise
func (b *Board) GetTile(x, y int) *Tile {
	if !b.InBounds(x, y) {
		return nil
	}
	return &b.T[b.Idx(x, y)]
}

// SetWall marks (x, y) as a wall
func (b *Board) SetWall(x, y int) {
	if t := b.GetTile(x, y); t != nil {
		t.Type = TileWall
	}
}

// IsWall reports whether c is a wall. Everything off the board is a wall.
func (b *Board) IsWall(c Coordinate) bool {
	t := b.GetTile(c.X, c.Y)
	return t == nil || t.IsWall()
}

// OpenNeighbors returns the neighbors of c that are not walls, in North,
// South, East, West order.
func (b *Board) OpenNeighbors(c Coordinate) []Coordinate {
	out := make([]Coordinate, 0, 4)
	for _, n := range c.Neighbors() {
		if !b.IsWall(n) {
			out = append(out, n)
		}
	}
	return out
}

// Walls returns the wall grid indexed [x][y]
func (b *Board) Walls() [][]bool {
	out := make([][]bool, b.W)
	for x := 0; x < b.W; x++ {
		out[x] = make([]bool, b.H)
		for y := 0; y < b.H; y++ {
			out[x][y] = b.T[b.Idx(x, y)].IsWall()
		}
	}
	return out
}

func (b *Board) Distance(x1, y1, x2, y2 int) int {
	return Coordinate{x1, y1}.DistanceTo(Coordinate{x2, y2})
}
