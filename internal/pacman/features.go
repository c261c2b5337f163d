package pacman

import (
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// Feature names produced by SimpleExtractor.
const (
	FeatureBias         = "bias"
	FeatureGhostsNearby = "#-of-ghosts-1-step-away"
	FeatureEatsFood     = "eats-food"
	FeatureClosestFood  = "closest-food"
)

// featureScale divides every feature to keep weight updates small.
const featureScale = 10.0

// SimpleExtractor describes the cell Pacman would move into: how many ghosts
// could reach it in one step, whether it holds food that is safe to eat, and
// how far the nearest food is from it.
type SimpleExtractor struct {
	board *core.Board
}

var _ mdp.FeatureExtractor[game.State] = (*SimpleExtractor)(nil)

// NewSimpleExtractor returns an extractor for games played on board.
func NewSimpleExtractor(board *core.Board) *SimpleExtractor {
	return &SimpleExtractor{board: board}
}

func (x *SimpleExtractor) Features(s game.State, a mdp.Action) mdp.Features {
	f := mdp.Features{FeatureBias: 1}

	next := s.Pacman
	if d, err := core.DirectionOf(a); err == nil {
		next = s.Pacman.Move(d)
	}

	ghosts := 0
	for _, g := range s.GhostPositions() {
		if x.reachable(g, next) {
			ghosts++
		}
	}
	f[FeatureGhostsNearby] = float64(ghosts)

	if ghosts == 0 && x.board.InBounds(next.X, next.Y) && s.Food.Has(x.board.Idx(next.X, next.Y)) {
		f[FeatureEatsFood] = 1
	}

	if dist, ok := x.closestFood(next, s.Food); ok {
		f[FeatureClosestFood] = float64(dist) / float64(x.board.W*x.board.H)
	}

	f.Scale(1 / featureScale)
	return f
}

// reachable reports whether a ghost at g could be at c after one move,
// standing still included.
func (x *SimpleExtractor) reachable(g, c core.Coordinate) bool {
	if g == c {
		return true
	}
	return g.IsAdjacentTo(c) && !x.board.IsWall(c)
}

// closestFood runs a breadth-first search over open cells from start.
func (x *SimpleExtractor) closestFood(start core.Coordinate, food core.Bitmap) (int, bool) {
	if x.board.IsWall(start) {
		return 0, false
	}
	seen := make([]bool, x.board.W*x.board.H)
	seen[x.board.Idx(start.X, start.Y)] = true

	type node struct {
		c    core.Coordinate
		dist int
	}
	queue := []node{{start, 0}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if food.Has(x.board.Idx(n.c.X, n.c.Y)) {
			return n.dist, true
		}
		for _, nb := range x.board.OpenNeighbors(n.c) {
			idx := x.board.Idx(nb.X, nb.Y)
			if !seen[idx] {
				seen[idx] = true
				queue = append(queue, node{nb, n.dist + 1})
			}
		}
	}
	return 0, false
}
