// Package render draws experiment results for terminals and browsers.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experiment"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/gridworld"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// DefaultPrecision is the number of decimals printed for values.
const DefaultPrecision = 2

var arrows = map[string]string{
	mdp.North.String(): "^",
	mdp.South.String(): "v",
	mdp.East.String():  ">",
	mdp.West.String():  "<",
	mdp.Exit.String():  "x",
	mdp.Stop.String():  ".",
}

// Printer writes gridworlds and Pacman boards as text, top row first.
type Printer struct {
	au        aurora.Aurora
	precision int
}

// NewPrinter creates a Printer. With colors off the output is plain text.
func NewPrinter(colors bool, precision int) *Printer {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Printer{au: aurora.NewAurora(colors), precision: precision}
}

func (p *Printer) cellWidth() int {
	// sign, two integer digits and the point
	return p.precision + 4
}

// Values prints one cell per grid position: the state value followed by the
// policy arrow. Walls are hatched; states missing from values are blank.
func (p *Printer) Values(w io.Writer, data experiment.GridData, values map[string]float64, policy map[string]string) error {
	walls := make(map[experiment.Cell]bool, len(data.Walls))
	for _, c := range data.Walls {
		walls[c] = true
	}
	scale := 0.0
	for _, v := range values {
		scale = max(scale, math.Abs(v))
	}

	width := p.cellWidth()
	var sb strings.Builder
	for y := data.Height - 1; y >= 0; y-- {
		for x := 0; x < data.Width; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			if walls[experiment.Cell{X: x, Y: y}] {
				sb.WriteString(p.au.Gray(12, strings.Repeat("#", width+2)).String())
				continue
			}
			key := mdp.StateKey(gridworld.At(x, y))
			v, ok := values[key]
			if !ok {
				sb.WriteString(strings.Repeat(" ", width+2))
				continue
			}
			text := fmt.Sprintf("%*.*f", width, p.precision, v)
			sb.WriteString(p.au.Index(ansi256(common.ValueColor(v, scale)), text).String())
			sb.WriteByte(' ')
			arrow, ok := arrows[policy[key]]
			if !ok {
				arrow = " "
			}
			sb.WriteString(p.au.Bold(arrow).String())
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Game prints a finished Pacman board with its score line.
func (p *Printer) Game(w io.Writer, gs *experiment.GameState) error {
	if gs == nil {
		return nil
	}
	ghosts := make(map[[2]int]int, len(gs.GhostPositions))
	for i, g := range gs.GhostPositions {
		ghosts[g] = i
	}
	capsules := make(map[[2]int]bool, len(gs.Capsules))
	for _, c := range gs.Capsules {
		capsules[c] = true
	}

	var sb strings.Builder
	for y := gs.Height - 1; y >= 0; y-- {
		for x := 0; x < gs.Width; x++ {
			pos := [2]int{x, y}
			switch {
			case gs.Walls[x][y]:
				sb.WriteString(p.au.Blue("%").String())
			case pos == gs.PacmanPosition:
				sb.WriteString(p.au.Bold(p.au.Yellow("P")).String())
			case hasGhost(ghosts, pos):
				i := ghosts[pos]
				if i < len(gs.ScaredTimers) && gs.ScaredTimers[i] > 0 {
					sb.WriteString(p.au.Cyan("S").String())
				} else {
					sb.WriteString(p.au.Red("G").String())
				}
			case capsules[pos]:
				sb.WriteString(p.au.Magenta("o").String())
			case gs.Food[x][y]:
				sb.WriteString(".")
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}

	outcome := ""
	switch {
	case gs.IsWin:
		outcome = " " + p.au.Green("WIN").String()
	case gs.IsLose:
		outcome = " " + p.au.Red("LOSS").String()
	}
	fmt.Fprintf(&sb, "Score: %d%s\n", gs.Score, outcome)

	_, err := io.WriteString(w, sb.String())
	return err
}

func hasGhost(ghosts map[[2]int]int, pos [2]int) bool {
	_, ok := ghosts[pos]
	return ok
}

// ansi256 maps c onto the 6x6x6 colour cube of 256-colour terminals.
func ansi256(c color.RGBA) uint8 {
	level := func(v uint8) uint8 { return uint8((int(v)*5 + 127) / 255) }
	return 16 + 36*level(c.R) + 6*level(c.G) + level(c.B)
}
