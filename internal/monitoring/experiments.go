package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCheckInterval is how often a running monitor logs its metrics.
const DefaultCheckInterval = 30 * time.Second

// ExperimentMonitor tracks experiments running in a server process
type ExperimentMonitor struct {
	mu            sync.RWMutex
	inFlight      int
	peak          int
	completed     int
	failed        int
	kindCounts    map[string]int
	baseline      int
	checkInterval time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	logger        zerolog.Logger
}

// NewExperimentMonitor creates a new experiment monitor. A non-positive
// interval falls back to DefaultCheckInterval.
func NewExperimentMonitor(interval time.Duration, logger zerolog.Logger) *ExperimentMonitor {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &ExperimentMonitor{
		kindCounts:    make(map[string]int),
		baseline:      runtime.NumGoroutine(),
		checkInterval: interval,
		stopChan:      make(chan struct{}),
		logger:        logger.With().Str("component", "experiment_monitor").Logger(),
	}
}

// Start begins periodic logging
func (m *ExperimentMonitor) Start() {
	go m.monitor()
	m.logger.Info().
		Dur("interval", m.checkInterval).
		Int("goroutine_baseline", m.baseline).
		Msg("Started experiment monitoring")
}

// Stop stops the monitor. It is safe to call more than once.
func (m *ExperimentMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *ExperimentMonitor) monitor() {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.logMetrics()
		case <-m.stopChan:
			return
		}
	}
}

func (m *ExperimentMonitor) logMetrics() {
	metrics := m.GetMetrics()
	m.logger.Info().
		Int("in_flight", metrics.InFlight).
		Int("peak", metrics.Peak).
		Int("completed", metrics.Completed).
		Int("failed", metrics.Failed).
		Int("goroutines", metrics.Goroutines).
		Msg("Experiment metrics")
}

// Begin records the start of an experiment of the given kind. The returned
// function must be called exactly once when it ends.
func (m *ExperimentMonitor) Begin(kind string) func(err error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	m.kindCounts[kind]++
	m.mu.Unlock()

	return func(err error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.inFlight--
		if err != nil {
			m.failed++
		} else {
			m.completed++
		}
	}
}

// GetMetrics returns current experiment metrics
func (m *ExperimentMonitor) GetMetrics() ExperimentMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return ExperimentMetrics{
		InFlight:   m.inFlight,
		Peak:       m.peak,
		Completed:  m.completed,
		Failed:     m.failed,
		Goroutines: runtime.NumGoroutine(),
		KindCounts: copyMap(m.kindCounts),
	}
}

// ExperimentMetrics contains experiment statistics
type ExperimentMetrics struct {
	InFlight   int            `json:"in_flight"`
	Peak       int            `json:"peak"`
	Completed  int            `json:"completed"`
	Failed     int            `json:"failed"`
	Goroutines int            `json:"goroutines"`
	KindCounts map[string]int `json:"kind_counts"`
}

func copyMap(m map[string]int) map[string]int {
	result := make(map[string]int, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
