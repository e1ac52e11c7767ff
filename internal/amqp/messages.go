package amqp

import (
	"encoding/json"
	"time"
)

// Movement event actions carried on the sync queue.
const (
	ActionCreated  = "created"
	ActionModified = "modified"
	ActionDeleted  = "deleted"
)

// MovementSyncMessage tells the register worker that a movement changed.
// It carries only the ID and the action; for created/modified the worker
// fetches the current row from the database, for deleted the register
// row is keyed by the movement ID.
type MovementSyncMessage struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMovementSyncMessage creates a sync message for one movement event.
func NewMovementSyncMessage(id int64, action string) *MovementSyncMessage {
	return &MovementSyncMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *MovementSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MovementSyncMessageFromJSON creates a message from JSON bytes.
func MovementSyncMessageFromJSON(data []byte) (*MovementSyncMessage, error) {
	var msg MovementSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
