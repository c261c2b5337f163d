package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestExperimentMonitorCounts(t *testing.T) {
	m := NewExperimentMonitor(0, zerolog.Nop())

	endA := m.Begin("qlearning")
	endB := m.Begin("qlearning")
	endC := m.Begin("value_iteration")

	metrics := m.GetMetrics()
	assert.Equal(t, 3, metrics.InFlight)
	assert.Equal(t, 3, metrics.Peak)

	endA(nil)
	endB(errors.New("engine failure"))
	endC(nil)

	metrics = m.GetMetrics()
	assert.Equal(t, 0, metrics.InFlight)
	assert.Equal(t, 3, metrics.Peak)
	assert.Equal(t, 2, metrics.Completed)
	assert.Equal(t, 1, metrics.Failed)
	assert.Equal(t, map[string]int{"qlearning": 2, "value_iteration": 1}, metrics.KindCounts)
	assert.Greater(t, metrics.Goroutines, 0)
}

func TestExperimentMonitorConcurrentUse(t *testing.T) {
	m := NewExperimentMonitor(time.Millisecond, zerolog.Nop())
	m.Start()
	defer m.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			end := m.Begin("pacman")
			end(nil)
		}()
	}
	wg.Wait()

	metrics := m.GetMetrics()
	assert.Equal(t, 0, metrics.InFlight)
	assert.Equal(t, 50, metrics.Completed)
	assert.LessOrEqual(t, metrics.Peak, 50)
}

func TestExperimentMonitorStopIsIdempotent(t *testing.T) {
	m := NewExperimentMonitor(time.Hour, zerolog.Nop())
	m.Start()
	m.Stop()
	assert.NotPanics(t, m.Stop)
}

func TestMetricsAreCopies(t *testing.T) {
	m := NewExperimentMonitor(0, zerolog.Nop())
	m.Begin("solve")(nil)

	metrics := m.GetMetrics()
	metrics.KindCounts["solve"] = 99
	assert.Equal(t, 1, m.GetMetrics().KindCounts["solve"])
}
