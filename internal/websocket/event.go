package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypeSeeded  EventType = "seeded"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeExpense EntityType = "expense"
)

// Event represents a message sent to live-update subscribers
// Format: { type, entity, ownerId, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`              // Combined type e.g. "expense.created"
	Entity    EntityType  `json:"entity"`            // Entity type e.g. "expense"
	OwnerID   string      `json:"ownerId,omitempty"` // Empty means the event concerns every owner
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, owner and payload
func NewEvent(eventType EventType, entityType EntityType, ownerID string, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		OwnerID:   ownerID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// DeletedPayload is the payload of a delete event
type DeletedPayload struct {
	ID string `json:"id"`
}

// SeededPayload is the payload of a seed event
type SeededPayload struct {
	Count int `json:"count"`
}

// ExpenseCreated creates an expense.created event
func ExpenseCreated(ownerID string, payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, ownerID, payload)
}

// ExpenseUpdated creates an expense.updated event
func ExpenseUpdated(ownerID string, payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeExpense, ownerID, payload)
}

// ExpenseDeleted creates an expense.deleted event. ownerID may be empty when
// the owner of the removed record is unknown.
func ExpenseDeleted(ownerID, id string) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, ownerID, DeletedPayload{ID: id})
}

// ExpensesSeeded creates an expense.seeded event addressed to every owner
func ExpensesSeeded(count int) Event {
	return NewEvent(EventTypeSeeded, EntityTypeExpense, "", SeededPayload{Count: count})
}
