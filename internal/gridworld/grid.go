package gridworld

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// CellKind tags the variant held by a Cell.
type CellKind int

const (
	CellOpen CellKind = iota
	CellWall
	CellStart
	CellTerminal
)

func (k CellKind) String() string {
	switch k {
	case CellOpen:
		return "open"
	case CellWall:
		return "wall"
	case CellStart:
		return "start"
	case CellTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// Cell is one square of a grid. Reward is only meaningful for CellTerminal.
type Cell struct {
	Kind   CellKind
	Reward float64
}

func Open() Cell { return Cell{Kind: CellOpen} }
func Wall() Cell { return Cell{Kind: CellWall} }
func Start() Cell { return Cell{Kind: CellStart} }
func Terminal(reward float64) Cell { return Cell{Kind: CellTerminal, Reward: reward} }

func (c Cell) String() string {
	switch c.Kind {
	case CellWall:
		return "#"
	case CellStart:
		return "S"
	case CellTerminal:
		return strconv.FormatFloat(c.Reward, 'g', -1, 64)
	default:
		return "."
	}
}

// Grid is a width x height board addressed as (x, y) with y growing upward.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid creates a grid with every cell open.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

func (g *Grid) Width() int { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) idx(x, y int) int { return y*g.width + x }

// InBounds reports whether (x, y) is on the board
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the cell at (x, y). Off-board coordinates read as walls.
func (g *Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Wall()
	}
	return g.cells[g.idx(x, y)]
}

// Set replaces the cell at (x, y).
func (g *Grid) Set(x, y int, c Cell) {
	if g.InBounds(x, y) {
		g.cells[g.idx(x, y)] = c
	}
}

// Rows renders the grid top row first, in the format ParseGrid accepts.
func (g *Grid) Rows() []string {
	rows := make([]string, 0, g.height)
	for y := g.height - 1; y >= 0; y-- {
		tokens := make([]string, g.width)
		for x := 0; x < g.width; x++ {
			tokens[x] = g.At(x, y).String()
		}
		rows = append(rows, strings.Join(tokens, " "))
	}
	return rows
}

// ParseGrid builds a grid from whitespace separated tokens, top row first:
//
//	.     open cell (also "_")
//	#     wall
//	S     start cell
//	<num> terminal cell paying num on exit
func ParseGrid(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, mdp.ConfigError("grid has no rows")
	}

	parsed := make([][]string, len(rows))
	for i, row := range rows {
		parsed[i] = strings.Fields(row)
		if len(parsed[i]) == 0 {
			return nil, mdp.ConfigError("grid row %d is empty", i)
		}
		if len(parsed[i]) != len(parsed[0]) {
			return nil, mdp.ConfigError("grid row %d has %d cells, want %d", i, len(parsed[i]), len(parsed[0]))
		}
	}

	height := len(parsed)
	g := NewGrid(len(parsed[0]), height)
	starts := 0
	for row, tokens := range parsed {
		y := height - 1 - row
		for x, tok := range tokens {
			switch tok {
			case ".", "_":
				g.Set(x, y, Open())
			case "#":
				g.Set(x, y, Wall())
			case "S":
				starts++
				g.Set(x, y, Start())
			default:
				reward, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return nil, mdp.ConfigError("grid cell (%d, %d): unrecognised token %q", x, y, tok)
				}
				g.Set(x, y, Terminal(reward))
			}
		}
	}
	if starts > 1 {
		return nil, mdp.ConfigError("grid has %d start cells", starts)
	}

	return g, nil
}

// MustParseGrid is ParseGrid for the fixed grids compiled into the binary.
func MustParseGrid(rows ...string) *Grid {
	g, err := ParseGrid(rows)
	if err != nil {
		panic(err)
	}
	return g
}
