package subscribers_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events/subscribers"
)

func decodeLastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var logLine map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &logLine))
	return logLine
}

func TestLoggerSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("test-logger", zerolog.New(&buf), zerolog.InfoLevel)

	assert.Equal(t, "test-logger", logSub.ID())
	assert.True(t, logSub.InterestedIn(events.TypeExperimentStarted))
	assert.True(t, logSub.InterestedIn("any.event.type"))

	logSub.SetEventFilter([]string{events.TypeGameEnded})
	assert.True(t, logSub.InterestedIn(events.TypeGameEnded))
	assert.False(t, logSub.InterestedIn(events.TypeEpisodeCompleted))

	logSub.SetEventFilter(nil)
	assert.True(t, logSub.InterestedIn(events.TypeEpisodeCompleted))
}

func TestLoggerSubscriberEventLogging(t *testing.T) {
	testCases := []struct {
		name  string
		event events.Event
		check func(t *testing.T, logLine map[string]interface{})
	}{
		{
			name:  "ExperimentStartedEvent",
			event: events.NewExperimentStartedEvent("exp-1", "value_iteration", "BookGrid", "value_iteration"),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "value_iteration", logLine["kind"])
				assert.Equal(t, "BookGrid", logLine["environment"])
			},
		},
		{
			name:  "ExperimentCompletedEvent",
			event: events.NewExperimentCompletedEvent("exp-1", "qlearning", 2*time.Second, nil),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "qlearning", logLine["kind"])
				assert.NotContains(t, logLine, "error")
			},
		},
		{
			name:  "SweepCompletedEvent",
			event: events.NewSweepCompletedEvent("exp-1", 7, 0.25),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(7), logLine["sweep"])
				assert.Equal(t, 0.25, logLine["residual"])
			},
		},
		{
			name:  "EpisodeCompletedEvent",
			event: events.NewEpisodeCompletedEvent("exp-1", 3, -1.5, 12, false, true),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(3), logLine["episode"])
				assert.Equal(t, -1.5, logLine["total_reward"])
				assert.Equal(t, false, logLine["terminated"])
			},
		},
		{
			name:  "GameEndedEvent",
			event: events.NewGameEndedEvent("exp-1", 2, 512, true, 30),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(512), logLine["score"])
				assert.Equal(t, true, logLine["win"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logSub := subscribers.NewLoggerSubscriber("event-logger", zerolog.New(&buf), zerolog.InfoLevel)

			logSub.HandleEvent(tc.event)

			logLine := decodeLastLine(t, &buf)
			assert.Equal(t, "Experiment event", logLine["message"])
			assert.Equal(t, "info", logLine["level"])
			assert.Equal(t, "exp-1", logLine["experiment_id"])
			assert.Equal(t, tc.event.Type(), logLine["event_type"])
			tc.check(t, logLine)
		})
	}
}

func TestLoggerSubscriberDevMode(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("dev-logger", zerolog.New(&buf), zerolog.DebugLevel)
	logSub.SetDevMode(true)

	bus := events.NewEventBus()
	bus.Subscribe(logSub)
	bus.Publish(events.NewEpisodeAbandonedEvent("exp-9", 4, assert.AnError))

	logLine := decodeLastLine(t, &buf)
	assert.Equal(t, "debug", logLine["level"])
	assert.Contains(t, logLine, "event_data")
	assert.Equal(t, assert.AnError.Error(), logLine["reason"])
}
