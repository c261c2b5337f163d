package mdp

// Action is one of the small, enumerated moves an agent can choose.
type Action string

const (
	North Action = "north"
	South Action = "south"
	East  Action = "east"
	West  Action = "west"
	Exit  Action = "exit"
	Stop  Action = "stop"
)

// ParseAction maps a wire name back onto an Action.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case North, South, East, West, Exit, Stop:
		return a, true
	}
	return "", false
}

// String returns the wire name of the action
func (a Action) String() string {
	return string(a)
}

// Contains reports whether a appears in actions.
func Contains(actions []Action, a Action) bool {
	for _, candidate := range actions {
		if candidate == a {
			return true
		}
	}
	return false
}
