package game

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/layout"
)

// MaxGhosts is the most ghosts a game can hold.
const MaxGhosts = layout.MaxGhosts

// State is a snapshot of a game. It is a plain comparable value, so it can
// key tables directly; two snapshots are equal when every agent, pellet and
// the score agree. Walls are not part of it, they belong to the layout.
type State struct {
	Pacman    core.Coordinate
	Ghosts    [MaxGhosts]core.Coordinate
	Scared    [MaxGhosts]int
	NumGhosts int
	Food      core.Bitmap
	Capsules  core.Bitmap
	Score     int
	Win       bool
	Lose      bool
}

// IsTerminal reports whether the game has ended
func (s State) IsTerminal() bool { return s.Win || s.Lose }

// GhostPositions returns the positions of the ghosts in play
func (s State) GhostPositions() []core.Coordinate {
	out := make([]core.Coordinate, s.NumGhosts)
	copy(out, s.Ghosts[:s.NumGhosts])
	return out
}

// ScaredTimers returns the remaining scared moves of the ghosts in play
func (s State) ScaredTimers() []int {
	out := make([]int, s.NumGhosts)
	copy(out, s.Scared[:s.NumGhosts])
	return out
}

// FoodLeft returns the number of pellets still on the board
func (s State) FoodLeft() int { return s.Food.Count() }

func (s State) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pacman=%s ghosts=[", s.Pacman)
	for i := 0; i < s.NumGhosts; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s", s.Ghosts[i])
		if s.Scared[i] > 0 {
			fmt.Fprintf(&sb, "/%d", s.Scared[i])
		}
	}
	fmt.Fprintf(&sb, "] food=%s capsules=%s score=%d",
		hex.EncodeToString([]byte(s.Food)), hex.EncodeToString([]byte(s.Capsules)), s.Score)
	switch {
	case s.Win:
		sb.WriteString(" win")
	case s.Lose:
		sb.WriteString(" lose")
	}
	return sb.String()
}
