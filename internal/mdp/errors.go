package mdp

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by environments, solvers and
// trainers.
type ErrorKind string

const (
	// KindConfig covers bad hyperparameters and unknown names. Raised before
	// any computation starts.
	KindConfig ErrorKind = "config"
	// KindDegenerate covers misuse of an environment, such as stepping a
	// terminal state.
	KindDegenerate ErrorKind = "degenerate"
	// KindEngine covers failures reported by an external game engine.
	KindEngine ErrorKind = "engine"
	// KindDivergence is raised when values grow past a configured bound.
	KindDivergence ErrorKind = "divergence"
)

var (
	ErrNoStartState  = errors.New("grid has no start state")
	ErrTerminalState = errors.New("step called on a terminal state")
	ErrIllegalAction = errors.New("action is not legal in the current state")
	ErrUnknownName   = errors.New("unknown name")
)

// Error is the structured error carried across package boundaries.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ConfigError builds a KindConfig error.
func ConfigError(format string, args ...interface{}) error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

// UnknownNameError builds a KindConfig error wrapping ErrUnknownName.
func UnknownNameError(what, name string) error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf("%s %q", what, name), Err: ErrUnknownName}
}

// DegenerateError wraps err as a KindDegenerate error.
func DegenerateError(err error, format string, args ...interface{}) error {
	return &Error{Kind: KindDegenerate, Message: fmt.Sprintf(format, args...), Err: err}
}

// EngineError wraps err as a KindEngine error.
func EngineError(err error, format string, args ...interface{}) error {
	return &Error{Kind: KindEngine, Message: fmt.Sprintf(format, args...), Err: err}
}

// DivergenceError builds a KindDivergence error.
func DivergenceError(format string, args ...interface{}) error {
	return &Error{Kind: KindDivergence, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
