package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventSlotClaimed       = "slot_claimed"
	EventReviewSubmitted   = "review_submitted"
	EventReviewRejected    = "review_rejected"
	EventDashboardComputed = "dashboard_computed"
)

// SlotClaimedPayload describes a successful claim of an open slot.
type SlotClaimedPayload struct {
	AppointmentID string    `json:"appointment_id"`
	ClientID      string    `json:"client_id"`
	ClaimedAt     time.Time `json:"claimed_at"`
}

// ReviewPayload describes a review submission outcome.
type ReviewPayload struct {
	ReviewID       string `json:"review_id,omitempty"`
	ProfessionalID string `json:"professional_id"`
	ClientID       string `json:"client_id"`
	Rating         int    `json:"rating,omitempty"`
	Decision       string `json:"decision"`
}

// DashboardPayload summarizes a computed dashboard.
type DashboardPayload struct {
	Role       string `json:"role"`
	SubjectID  string `json:"subject_id"`
	Upcoming   int    `json:"upcoming"`
	History    int    `json:"history"`
	DurationMs int64  `json:"duration_ms"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into out.
func (e *Event) Decode(out interface{}) error {
	return json.Unmarshal(e.Payload, out)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers synchronously. Handler errors are ignored.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event. A nil bus is a no-op.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
