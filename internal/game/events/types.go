package events

import (
	"time"
)

// Event is the base interface for all experiment events
type Event interface {
	// Type returns the event type as a string for filtering and logging
	Type() string
	// Timestamp returns when the event occurred
	Timestamp() time.Time
	// ExperimentID returns the ID of the run this event belongs to
	ExperimentID() string
}

// BaseEvent provides common fields for all events
type BaseEvent struct {
	EventType  string    `json:"type"`
	Time       time.Time `json:"timestamp"`
	Experiment string    `json:"experiment_id"`
}

// Type implements Event interface
func (e BaseEvent) Type() string {
	return e.EventType
}

// Timestamp implements Event interface
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// ExperimentID implements Event interface
func (e BaseEvent) ExperimentID() string {
	return e.Experiment
}

func newBase(eventType, experimentID string) BaseEvent {
	return BaseEvent{
		EventType:  eventType,
		Time:       time.Now(),
		Experiment: experimentID,
	}
}

// EventHandler is a function that processes events
type EventHandler func(Event)

// Subscriber represents an entity that can receive events
type Subscriber interface {
	// ID returns a unique identifier for this subscriber
	ID() string
	// HandleEvent processes an event
	HandleEvent(Event)
	// InterestedIn returns true if the subscriber wants to receive this event type
	InterestedIn(eventType string) bool
}

// Publisher is the interface for publishing events
type Publisher interface {
	// Publish sends an event to all interested subscribers
	Publish(Event)
}

// Bus is the main event bus interface
type Bus interface {
	Publisher
	// Subscribe adds a new subscriber to the event bus
	Subscribe(Subscriber)
	// Unsubscribe removes a subscriber from the event bus
	Unsubscribe(subscriberID string)
	// SubscribeFunc adds a function handler for one event type or AllEvents
	SubscribeFunc(eventType string, handler EventHandler) string
	// UnsubscribeFunc removes a handler by the ID SubscribeFunc returned
	UnsubscribeFunc(handlerID string) bool
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
