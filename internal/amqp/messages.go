package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
)

// TransactionEvent is the wire message for ledger mutations. The payload
// carries only identifiers; consumers read the current record from storage.
type TransactionEvent struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCreatedEvent(id, userID string) *TransactionEvent {
	return &TransactionEvent{
		Event:     EventTransactionCreated,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

func NewDeletedEvent(id, userID string) *TransactionEvent {
	return &TransactionEvent{
		Event:     EventTransactionDeleted,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
