package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// MaxGhosts bounds the number of ghosts a layout may place.
const MaxGhosts = 4

// ErrInvalidLayout is wrapped by every parse failure.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is a parsed Pacman maze. Coordinates put row 0 at the bottom of the
// text.
type Layout struct {
	Name        string
	Width       int
	Height      int
	Board       *core.Board
	Food        core.Bitmap
	Capsules    []core.Coordinate
	PacmanStart core.Coordinate
	GhostStarts []core.Coordinate
}

// NumGhosts returns the number of ghost start positions
func (l *Layout) NumGhosts() int { return len(l.GhostStarts) }

// TotalFood returns the number of food pellets at the start of a game
func (l *Layout) TotalFood() int { return l.Food.Count() }

// FoodGrid returns the starting food indexed [x][y]
func (l *Layout) FoodGrid() [][]bool {
	out := make([][]bool, l.Width)
	for x := 0; x < l.Width; x++ {
		out[x] = make([]bool, l.Height)
		for y := 0; y < l.Height; y++ {
			out[x][y] = l.Food.Has(l.Board.Idx(x, y))
		}
	}
	return out
}

// Parse reads the text layout format: '%' wall, '.' food, 'o' capsule,
// 'P' Pacman, 'G' or '1'-'4' ghost, ' ' empty. Rows must share a width and
// exactly one Pacman is required.
func Parse(name, text string) (*Layout, error) {
	lines := strings.Split(strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, invalid("%s: layout is empty", name)
	}

	height, width := len(lines), len(lines[0])
	board := core.NewBoard(width, height)
	var food []int
	l := &Layout{Name: name, Width: width, Height: height, Board: board}
	pacmen := 0

	for row, line := range lines {
		if len(line) != width {
			return nil, invalid("%s: row %d has width %d, want %d", name, row, len(line), width)
		}
		y := height - 1 - row
		for x, ch := range line {
			c := core.NewCoordinate(x, y)
			switch ch {
			case '%':
				board.SetWall(x, y)
			case '.':
				food = append(food, board.Idx(x, y))
			case 'o':
				l.Capsules = append(l.Capsules, c)
			case 'P':
				l.PacmanStart = c
				pacmen++
			case 'G', '1', '2', '3', '4':
				l.GhostStarts = append(l.GhostStarts, c)
			case ' ':
			default:
				return nil, invalid("%s: unknown symbol %q at row %d column %d", name, ch, row, x)
			}
		}
	}

	if pacmen != 1 {
		return nil, invalid("%s: want exactly one Pacman, found %d", name, pacmen)
	}
	if len(l.GhostStarts) > MaxGhosts {
		return nil, invalid("%s: %d ghosts exceeds the limit of %d", name, len(l.GhostStarts), MaxGhosts)
	}

	// ghosts are numbered by position, left to right then bottom to top
	sort.Slice(l.GhostStarts, func(i, j int) bool {
		a, b := l.GhostStarts[i], l.GhostStarts[j]
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})

	l.Food = core.BitmapOf(width*height, food...)
	return l, nil
}

func invalid(format string, args ...interface{}) error {
	return &mdp.Error{Kind: mdp.KindConfig, Message: fmt.Sprintf(format, args...), Err: ErrInvalidLayout}
}
