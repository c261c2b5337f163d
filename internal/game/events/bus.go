package events

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AllEvents subscribes a function handler to every event type.
const AllEvents = "*"

type funcHandler struct {
	id        string
	eventType string
	fn        EventHandler
}

// EventBus delivers events synchronously on the publishing goroutine.
// Subscribers and handlers are notified in registration order, and the
// delivery happens outside the bus lock so handlers may subscribe or
// unsubscribe while an experiment is running.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	handlers    []funcHandler
	nextID      uint64
	published   map[string]int
	logger      zerolog.Logger
}

// BusOption configures an EventBus.
type BusOption func(*EventBus)

// WithLogger replaces the global logger the bus reports panics through.
func WithLogger(logger zerolog.Logger) BusOption {
	return func(eb *EventBus) {
		eb.logger = logger.With().Str("component", "event_bus").Logger()
	}
}

func NewEventBus(opts ...BusOption) *EventBus {
	eb := &EventBus{
		published: make(map[string]int),
		logger:    log.With().Str("component", "event_bus").Logger(),
	}
	for _, opt := range opts {
		opt(eb)
	}
	return eb
}

// Subscribe registers a subscriber. A subscriber with the same ID replaces
// the earlier one in place.
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, s := range eb.subscribers {
		if s.ID() == subscriber.ID() {
			eb.subscribers[i] = subscriber
			return
		}
	}
	eb.subscribers = append(eb.subscribers, subscriber)
	eb.logger.Debug().Str("subscriber_id", subscriber.ID()).Msg("Subscriber added")
}

func (eb *EventBus) Unsubscribe(subscriberID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, s := range eb.subscribers {
		if s.ID() == subscriberID {
			eb.subscribers = append(eb.subscribers[:i:i], eb.subscribers[i+1:]...)
			eb.logger.Debug().Str("subscriber_id", subscriberID).Msg("Subscriber removed")
			return
		}
	}
}

// SubscribeFunc registers handler for eventType, or for every event when
// eventType is AllEvents. The returned ID can be passed to UnsubscribeFunc.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := fmt.Sprintf("%s#%d", eventType, eb.nextID)
	eb.handlers = append(eb.handlers, funcHandler{id: id, eventType: eventType, fn: handler})
	return id
}

// UnsubscribeFunc removes a handler added by SubscribeFunc and reports
// whether it was registered.
func (eb *EventBus) UnsubscribeFunc(handlerID string) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, h := range eb.handlers {
		if h.id == handlerID {
			eb.handlers = append(eb.handlers[:i:i], eb.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Publish notifies every interested subscriber and handler. A panicking
// receiver is logged and does not stop delivery to the rest.
func (eb *EventBus) Publish(event Event) {
	eventType := event.Type()

	eb.mu.Lock()
	eb.published[eventType]++
	subscribers := make([]Subscriber, 0, len(eb.subscribers))
	for _, s := range eb.subscribers {
		if s.InterestedIn(eventType) {
			subscribers = append(subscribers, s)
		}
	}
	handlers := make([]funcHandler, 0, len(eb.handlers))
	for _, h := range eb.handlers {
		if h.eventType == eventType || h.eventType == AllEvents {
			handlers = append(handlers, h)
		}
	}
	eb.mu.Unlock()

	for _, s := range subscribers {
		eb.deliver(event, s.ID(), s.HandleEvent)
	}
	for _, h := range handlers {
		eb.deliver(event, h.id, h.fn)
	}
}

func (eb *EventBus) deliver(event Event, receiver string, fn EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("receiver", receiver).
				Str("event_type", event.Type()).
				Str("experiment_id", event.ExperimentID()).
				Interface("panic", r).
				Msg("Event receiver panicked")
		}
	}()
	fn(event)
}

// Published returns how many events of eventType went through the bus.
func (eb *EventBus) Published(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.published[eventType]
}

func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// HandlerCount counts the function handlers registered for exactly eventType.
func (eb *EventBus) HandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	n := 0
	for _, h := range eb.handlers {
		if h.eventType == eventType {
			n++
		}
	}
	return n
}
