package experience

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/testutil"
)

func createTestExperience(step int) Experience[int] {
	return Experience[int]{
		Episode:   0,
		Step:      step,
		State:     step,
		Action:    mdp.East,
		Reward:    0.5,
		NextState: step + 1,
	}
}

func steps(exps []Experience[int]) []int {
	out := make([]int, len(exps))
	for i, e := range exps {
		out[i] = e.Step
	}
	return out
}

func TestBuffer_Creation(t *testing.T) {
	buffer := NewBuffer[int](100, zerolog.Nop())

	assert.NotNil(t, buffer)
	assert.Equal(t, 100, buffer.Capacity())
	assert.Equal(t, 0, buffer.Size())
	assert.False(t, buffer.IsFull())

	assert.Equal(t, DefaultCapacity, NewBuffer[int](0, zerolog.Nop()).Capacity())
}

func TestBuffer_AddAndGet(t *testing.T) {
	buffer := NewBuffer[int](10, zerolog.Nop())

	for i := 0; i < 5; i++ {
		require.NoError(t, buffer.Add(createTestExperience(i)))
	}
	assert.Equal(t, 5, buffer.Size())

	experiences := buffer.Get(3)
	assert.Equal(t, []int{0, 1, 2}, steps(experiences))
	assert.Equal(t, 2, buffer.Size())

	assert.Equal(t, []int{3, 4}, steps(buffer.GetAll()))
	assert.Equal(t, 0, buffer.Size())
}

func TestBuffer_CircularBehavior(t *testing.T) {
	buffer := NewBuffer[int](3, zerolog.Nop())

	for i := 0; i < 5; i++ {
		require.NoError(t, buffer.Add(createTestExperience(i)))
	}

	assert.True(t, buffer.IsFull())
	assert.Equal(t, []int{2, 3, 4}, steps(buffer.Snapshot()))
	assert.Equal(t, []int{3, 4}, steps(buffer.GetLatest(2)))

	stats := buffer.Stats()
	assert.Equal(t, int64(5), stats.TotalAdded)
	assert.Equal(t, int64(2), stats.TotalDropped)
	assert.InDelta(t, 100.0, stats.UtilizationPct, 1e-9)
}

func TestBuffer_AddBatch(t *testing.T) {
	buffer := NewBuffer[int](10, zerolog.Nop())

	batch := []Experience[int]{createTestExperience(0), createTestExperience(1), createTestExperience(2)}
	require.NoError(t, buffer.AddBatch(batch))
	assert.Equal(t, 3, buffer.Size())
	assert.Equal(t, []int{0, 1, 2}, steps(buffer.Snapshot()))
}

func TestBuffer_Sample(t *testing.T) {
	buffer := NewBuffer[int](10, zerolog.Nop())
	rng := testutil.NewTestRNG(testutil.DefaultSeed)

	assert.Empty(t, buffer.Sample(5, rng))

	for i := 0; i < 4; i++ {
		require.NoError(t, buffer.Add(createTestExperience(i)))
	}

	sample := buffer.Sample(50, rng)
	assert.Len(t, sample, 50)
	for _, exp := range sample {
		assert.GreaterOrEqual(t, exp.Step, 0)
		assert.Less(t, exp.Step, 4)
	}
	assert.Equal(t, 4, buffer.Size(), "sampling does not consume")
}

func TestBuffer_Clear(t *testing.T) {
	buffer := NewBuffer[int](10, zerolog.Nop())
	for i := 0; i < 5; i++ {
		require.NoError(t, buffer.Add(createTestExperience(i)))
	}

	buffer.Clear()
	assert.Equal(t, 0, buffer.Size())
	assert.Empty(t, buffer.Snapshot())
}

func TestBuffer_ClosedOperations(t *testing.T) {
	buffer := NewBuffer[int](10, zerolog.Nop())
	require.NoError(t, buffer.Add(createTestExperience(0)))
	require.NoError(t, buffer.Close())
	require.NoError(t, buffer.Close())

	assert.ErrorIs(t, buffer.Add(createTestExperience(1)), ErrBufferClosed)
	assert.ErrorIs(t, buffer.AddBatch([]Experience[int]{createTestExperience(2)}), ErrBufferClosed)
	assert.Equal(t, 1, buffer.Size(), "closed buffer stays readable")
}
