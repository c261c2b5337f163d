package gridworld

import (
	"sort"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// Named grids, top row first.
var namedGrids = map[string][]string{
	"BookGrid": {
		". . . 1",
		". # . -1",
		"S . . .",
	},
	"BridgeGrid": {
		"# -100 -100 -100 -100 -100 #",
		"1 S . . . . 10",
		"# -100 -100 -100 -100 -100 #",
	},
	"CliffGrid": {
		". . . . .",
		"S . . . 10",
		"-100 -100 -100 -100 -100",
	},
	"CliffGrid2": {
		". . . . .",
		"8 S . . 10",
		"-100 -100 -100 -100 -100",
	},
	"DiscountGrid": {
		". . . . .",
		". # . . .",
		". # 1 # 10",
		"S . . . .",
		"-10 -10 -10 -10 -10",
	},
	"MazeGrid": {
		". . . 1",
		"# # . #",
		". # . .",
		". # # .",
		"S . . .",
	},
}

// Names lists the built-in grids in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(namedGrids))
	for name := range namedGrids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a fresh copy of a built-in grid.
func Lookup(name string) (*Grid, error) {
	rows, ok := namedGrids[name]
	if !ok {
		return nil, mdp.UnknownNameError("grid", name)
	}
	return ParseGrid(rows)
}

// NewNamed builds a Gridworld over a built-in grid.
func NewNamed(name string) (*Gridworld, error) {
	g, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return New(g), nil
}
