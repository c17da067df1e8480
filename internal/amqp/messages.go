package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Ledger operations carried by LedgerChangedMessage.Op.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// LedgerChangedMessage announces a write to the ledger. It is lightweight:
// consumers rebuild whatever they need for Year from the database.
type LedgerChangedMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Year      int       `json:"year"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage stamps a message with the current time.
func NewLedgerChangedMessage(entity, id, op string, year int) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Entity:    entity,
		ID:        id,
		Op:        op,
		Year:      year,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message and rejects ones without
// an entity or a plausible year.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" {
		return nil, errors.New("ledger message without entity")
	}
	if msg.Year < 1900 || msg.Year > 9999 {
		return nil, errors.New("ledger message with invalid year")
	}
	return &msg, nil
}
