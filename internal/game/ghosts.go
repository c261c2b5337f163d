package game

import (
	"math/rand"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
)

// GhostView is what a ghost policy sees when choosing a move.
type GhostView struct {
	Index    int
	Position core.Coordinate
	Pacman   core.Coordinate
	Scared   bool
}

// GhostAgent picks a move for one ghost from its legal directions. legal is
// never empty.
type GhostAgent interface {
	Name() string
	ChooseDirection(view GhostView, legal []core.Direction, rng *rand.Rand) core.Direction
}

// RandomGhost moves uniformly at random.
type RandomGhost struct{}

func (RandomGhost) Name() string { return "random" }

func (RandomGhost) ChooseDirection(_ GhostView, legal []core.Direction, rng *rand.Rand) core.Direction {
	return legal[rng.Intn(len(legal))]
}

// DirectionalGhost chases Pacman, or flees while scared, with probability
// Attack (Flee when scared), and otherwise moves at random.
type DirectionalGhost struct {
	Attack float64
	Flee   float64
}

// NewDirectionalGhost returns a ghost that commits to its best move 80% of the
// time.
func NewDirectionalGhost() DirectionalGhost {
	return DirectionalGhost{Attack: 0.8, Flee: 0.8}
}

func (DirectionalGhost) Name() string { return "directional" }

func (g DirectionalGhost) ChooseDirection(view GhostView, legal []core.Direction, rng *rand.Rand) core.Direction {
	best := make([]core.Direction, 0, len(legal))
	bestDist := 0
	for i, d := range legal {
		dist := view.Position.Move(d).DistanceTo(view.Pacman)
		better := dist < bestDist
		if view.Scared {
			better = dist > bestDist
		}
		switch {
		case i == 0 || better:
			best = append(best[:0], d)
			bestDist = dist
		case dist == bestDist:
			best = append(best, d)
		}
	}

	commit := g.Attack
	if view.Scared {
		commit = g.Flee
	}

	// P(d) = commit/|best| for best moves plus (1-commit)/|legal| for all
	r := rng.Float64()
	for _, d := range legal {
		p := (1 - commit) / float64(len(legal))
		for _, b := range best {
			if b == d {
				p += commit / float64(len(best))
				break
			}
		}
		if r < p {
			return d
		}
		r -= p
	}
	return legal[len(legal)-1]
}

// GhostByName returns the ghost policy called name.
func GhostByName(name string) (GhostAgent, bool) {
	switch name {
	case "", "random":
		return RandomGhost{}, true
	case "directional":
		return NewDirectionalGhost(), true
	default:
		return nil, false
	}
}
