package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received Event
	bus.SubscribeFunc(TypeExperimentStarted, func(e Event) {
		received = e
	})

	bus.Publish(NewExperimentStartedEvent("exp-1", "value_iteration", "BookGrid", "value_iteration"))

	require.NotNil(t, received, "Event should have been received")
	assert.Equal(t, TypeExperimentStarted, received.Type())
	assert.Equal(t, "exp-1", received.ExperimentID())
	assert.False(t, received.Timestamp().IsZero())
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	handler1Called := false
	handler2Called := false

	id1 := bus.SubscribeFunc(TypeSweepCompleted, func(e Event) {
		handler1Called = true
	})
	id2 := bus.SubscribeFunc(TypeSweepCompleted, func(e Event) {
		handler2Called = true
	})

	bus.Publish(NewSweepCompletedEvent("exp-1", 1, 0.5))

	assert.True(t, handler1Called, "Handler 1 should have been called")
	assert.True(t, handler2Called, "Handler 2 should have been called")
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, bus.HandlerCount(TypeSweepCompleted))
}

// TestSubscriber is a test implementation of Subscriber
type TestSubscriber struct {
	id              string
	interestedTypes map[string]bool
	receivedEvents  []Event
}

func (ts *TestSubscriber) ID() string {
	return ts.id
}

func (ts *TestSubscriber) HandleEvent(e Event) {
	ts.receivedEvents = append(ts.receivedEvents, e)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if ts.interestedTypes == nil {
		return true
	}
	return ts.interestedTypes[eventType]
}

func TestEventBusSubscriber(t *testing.T) {
	bus := NewEventBus()

	subscriber := &TestSubscriber{
		id: "test-subscriber",
		interestedTypes: map[string]bool{
			TypeExperimentStarted:   true,
			TypeExperimentCompleted: true,
		},
	}

	bus.Subscribe(subscriber)
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.Publish(NewExperimentStartedEvent("exp-1", "qlearning", "BookGrid", "qlearning"))
	bus.Publish(NewEpisodeCompletedEvent("exp-1", 0, 1.0, 4, true, true))
	bus.Publish(NewExperimentCompletedEvent("exp-1", "qlearning", time.Second, nil))

	require.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, TypeExperimentStarted, subscriber.receivedEvents[0].Type())
	assert.Equal(t, TypeExperimentCompleted, subscriber.receivedEvents[1].Type())

	bus.Unsubscribe(subscriber.ID())
	bus.Publish(NewExperimentStartedEvent("exp-2", "qlearning", "BookGrid", "qlearning"))
	assert.Len(t, subscriber.receivedEvents, 2)
}

func TestEventBusHandlerPanicIsolated(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.SubscribeFunc(TypeGameEnded, func(e Event) {
		panic("boom")
	})
	bus.SubscribeFunc(TypeGameEnded, func(e Event) {
		called = true
	})

	assert.NotPanics(t, func() {
		bus.Publish(NewGameEndedEvent("exp-1", 0, 510, true, 12))
	})
	assert.True(t, called)
}

func TestEventBusWildcardAndUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	var all, sweeps []string
	allID := bus.SubscribeFunc(AllEvents, func(e Event) { all = append(all, e.Type()) })
	sweepID := bus.SubscribeFunc(TypeSweepCompleted, func(e Event) { sweeps = append(sweeps, e.Type()) })
	assert.Equal(t, 1, bus.HandlerCount(TypeSweepCompleted))
	assert.Equal(t, 1, bus.HandlerCount(AllEvents))

	bus.Publish(NewSweepCompletedEvent("exp-1", 1, 0.5))
	bus.Publish(NewGameEndedEvent("exp-1", 0, 10, false, 3))

	assert.Equal(t, []string{TypeSweepCompleted, TypeGameEnded}, all)
	assert.Equal(t, []string{TypeSweepCompleted}, sweeps)
	assert.Equal(t, 1, bus.Published(TypeSweepCompleted))
	assert.Equal(t, 1, bus.Published(TypeGameEnded))

	assert.True(t, bus.UnsubscribeFunc(sweepID))
	assert.False(t, bus.UnsubscribeFunc(sweepID))
	bus.Publish(NewSweepCompletedEvent("exp-1", 2, 0.1))
	assert.Len(t, sweeps, 1)
	assert.Len(t, all, 3)

	assert.True(t, bus.UnsubscribeFunc(allID))
	assert.Equal(t, 0, bus.HandlerCount(AllEvents))
}

func TestEventBusDeliversInRegistrationOrder(t *testing.T) {
	bus := NewEventBus()

	var order []string
	for _, id := range []string{"c", "a", "b"} {
		bus.Subscribe(&orderSubscriber{id: id, order: &order})
	}
	bus.Publish(NewSweepCompletedEvent("exp-1", 1, 0))
	assert.Equal(t, []string{"c", "a", "b"}, order)

	// re-subscribing an ID keeps its slot
	bus.Subscribe(&orderSubscriber{id: "c", order: &order})
	assert.Equal(t, 3, bus.SubscriberCount())
	order = nil
	bus.Publish(NewSweepCompletedEvent("exp-1", 2, 0))
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestEventBusHandlerMaySubscribe(t *testing.T) {
	bus := NewEventBus()

	late := 0
	bus.SubscribeFunc(TypeExperimentStarted, func(e Event) {
		bus.SubscribeFunc(TypeExperimentCompleted, func(Event) { late++ })
	})

	assert.NotPanics(t, func() {
		bus.Publish(NewExperimentStartedEvent("exp-1", "qlearning", "BookGrid", "qlearning"))
	})
	bus.Publish(NewExperimentCompletedEvent("exp-1", "qlearning", time.Second, nil))
	assert.Equal(t, 1, late)
}

type orderSubscriber struct {
	id    string
	order *[]string
}

func (s *orderSubscriber) ID() string { return s.id }
func (s *orderSubscriber) HandleEvent(Event) { *s.order = append(*s.order, s.id) }
func (s *orderSubscriber) InterestedIn(string) bool { return true }

func TestEventConstructors(t *testing.T) {
	done := NewExperimentCompletedEvent("exp-1", "pacman", time.Second, errors.New("engine failed"))
	assert.Equal(t, "engine failed", done.Error)

	ok := NewExperimentCompletedEvent("exp-1", "pacman", time.Second, nil)
	assert.Empty(t, ok.Error)

	abandoned := NewEpisodeAbandonedEvent("exp-1", 3, errors.New("collision table corrupt"))
	assert.Equal(t, TypeEpisodeAbandoned, abandoned.Type())
	assert.Equal(t, 3, abandoned.Episode)
	assert.Equal(t, "collision table corrupt", abandoned.Reason)

	assert.NotPanics(t, func() { NopPublisher{}.Publish(ok) })
}
