package testutil

// Gridworld fixtures, top row first.
var (
	// TwoCellRows is a corridor with the start on the left and a +1 exit on
	// the right.
	TwoCellRows = []string{"S 1"}

	// ColumnRows puts a +1 exit directly north of the start.
	ColumnRows = []string{
		"1",
		"S",
	}

	// TrapRows offers a +1 exit one step east and a -1 exit one step west.
	TrapRows = []string{"-1 S 1"}

	// OpenRows has no exits at all, so every episode runs into the step cap.
	OpenRows = []string{
		". .",
		"S .",
	}
)

// Pacman layouts.
const (
	// CorridorLayout has a single food pellet two steps east of Pacman and no
	// ghosts.
	CorridorLayout = `%%%%%
%P .%
%%%%%`

	// GhostCorridorLayout has a ghost waiting at the end of a corridor.
	GhostCorridorLayout = `%%%%%%%
%P.. G%
%%%%%%%`

	// CapsuleLayout has a capsule next to Pacman and a ghost behind it.
	CapsuleLayout = `%%%%%%%
%Po G.%
%%%%%%%`
)
