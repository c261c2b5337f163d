package mdp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cell struct{ x, y int }

func (c cell) String() string { return fmt.Sprintf("(%d, %d)", c.x, c.y) }

func TestParseAction(t *testing.T) {
	for _, a := range []Action{North, South, East, West, Exit, Stop} {
		parsed, ok := ParseAction(a.String())
		require.True(t, ok)
		assert.Equal(t, a, parsed)
	}

	_, ok := ParseAction("up")
	assert.False(t, ok)
}

func TestContains(t *testing.T) {
	actions := []Action{North, West}
	assert.True(t, Contains(actions, West))
	assert.False(t, Contains(actions, Exit))
	assert.False(t, Contains(nil, North))
}

func TestFeaturesDotAndScale(t *testing.T) {
	f := Features{"bias": 1, "food": 0.5}
	w := map[string]float64{"bias": 2, "ghost": 100}

	assert.InDelta(t, 2.0, f.Dot(w), 1e-12)

	f.Scale(0.1)
	assert.InDelta(t, 0.1, f["bias"], 1e-12)
	assert.InDelta(t, 0.05, f["food"], 1e-12)
}

func TestIdentityExtractor(t *testing.T) {
	ext := IdentityExtractor[cell]{}

	a := ext.Features(cell{0, 0}, North)
	b := ext.Features(cell{0, 0}, South)
	c := ext.Features(cell{1, 0}, North)

	require.Len(t, a, 1)
	assert.Equal(t, 1.0, a["(0, 0)|north"])
	for name := range a {
		assert.NotContains(t, b, name)
		assert.NotContains(t, c, name)
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"config", ConfigError("discount %v out of range", 1.5), KindConfig},
		{"unknown", UnknownNameError("grid", "Nope"), KindConfig},
		{"degenerate", DegenerateError(ErrTerminalState, "step"), KindDegenerate},
		{"engine", EngineError(errors.New("boom"), "pacman step"), KindEngine},
		{"divergence", DivergenceError("|V| > %v", 1e6), KindDivergence},
		{"plain", errors.New("plain"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.Equal(t, tt.kind, KindOf(wrapped))
		})
	}

	assert.True(t, errors.Is(UnknownNameError("grid", "x"), ErrUnknownName))
	assert.True(t, errors.Is(DegenerateError(ErrTerminalState, "step"), ErrTerminalState))
	assert.Contains(t, ConfigError("bad").Error(), "config error")
}
