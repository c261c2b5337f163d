package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestSolve(t *testing.T) {
	out := run(t, "solve", "--grid", "BookGrid", "--iterations", "100")

	assert.Contains(t, out, "Value iteration on BookGrid")
	assert.Contains(t, out, "  1.00 x")
	assert.Contains(t, out, " -1.00 x")
}

func TestSolveJSON(t *testing.T) {
	out := run(t, "--json", "solve", "--grid", "BookGrid", "--noise", "0")

	var s structpb.Struct
	require.NoError(t, protojson.Unmarshal([]byte(out), &s))
	assert.Equal(t, "BookGrid", s.Fields["grid"].GetStringValue())
	assert.Equal(t, 0.0, s.Fields["noise"].GetNumberValue())
}

func TestTrainWritesChart(t *testing.T) {
	chart := filepath.Join(t.TempDir(), "curve.html")
	out := run(t, "train", "--grid", "BookGrid", "--episodes", "20", "--seed", "3", "--record", "2", "--chart", chart)

	assert.Contains(t, out, "QLearningAgent on BookGrid: 20 episodes")
	assert.Contains(t, out, "completed 20, abandoned 0")

	html, err := os.ReadFile(chart)
	require.NoError(t, err)
	assert.Contains(t, string(html), "BookGrid")
}

func TestPacman(t *testing.T) {
	out := run(t, "pacman", "--layout", "smallGrid", "--training", "2", "--games", "1", "--max-steps", "100", "--seed", "5")

	assert.Contains(t, out, "PacmanQAgent on smallGrid")
	assert.Contains(t, out, "Game 1:")
	assert.Contains(t, out, "Average score:")
}

func TestCompare(t *testing.T) {
	out := run(t, "compare", "--grid", "BookGrid", "--episodes", "30", "--seed", "8")

	assert.Contains(t, out, "Value Iteration (100 iterations)")
	assert.Contains(t, out, "Q-Learning (30 episodes)")
	assert.Contains(t, out, "Policy agreement:")
}

func TestListAndLayout(t *testing.T) {
	out := run(t, "list")
	assert.Contains(t, out, "BookGrid")
	assert.Contains(t, out, "(not available)")

	out = run(t, "layout", "smallGrid")
	assert.Contains(t, out, "smallGrid: 7x7, 1 ghosts")
	assert.Contains(t, out, "%% P G%")
}

func TestUnknownGrid(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "error", "solve", "--grid", "NoGrid"})
	assert.Error(t, root.Execute())
}
