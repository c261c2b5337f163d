package gridworld

import (
	"fmt"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// CoordinateExtractor describes a pair by its state, its row, its column and
// the action taken. Unlike the identity features it generalises across cells
// that share a row or column.
type CoordinateExtractor struct{}

var _ mdp.FeatureExtractor[State] = CoordinateExtractor{}

func (CoordinateExtractor) Features(s State, a mdp.Action) mdp.Features {
	f := mdp.Features{s.String(): 1}
	f[fmt.Sprintf("action=%s", a)] = 1
	if !s.Terminal {
		f[fmt.Sprintf("x=%d", s.X)] = 1
		f[fmt.Sprintf("y=%d", s.Y)] = 1
	}
	return f
}
