package amqp

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{6, 30 * time.Second},
		{100, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"amqp error", &amqp091.Error{Code: 320, Reason: "connection forced"}, true},
		{"connection string", errors.New("connection reset by peer"), true},
		{"channel closed", errors.New("message channel closed"), true},
		{"eof", io.EOF, true},
		{"unrelated", errors.New("bad payload"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Fatalf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestEventJSONRoundTrip(t *testing.T) {
	event := NewCreatedEvent("tx-123", "user-1")

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := EventFromJSON(data)
	if err != nil {
		t.Fatalf("EventFromJSON: %v", err)
	}
	if decoded.Event != EventTransactionCreated {
		t.Errorf("Event = %q, want %q", decoded.Event, EventTransactionCreated)
	}
	if decoded.ID != "tx-123" || decoded.UserID != "user-1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestEventFromJSONInvalid(t *testing.T) {
	if _, err := EventFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestDeletedEvent(t *testing.T) {
	event := NewDeletedEvent("tx-9", "user-1")
	if event.Event != EventTransactionDeleted {
		t.Fatalf("Event = %q, want %q", event.Event, EventTransactionDeleted)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("timestamp should be set")
	}
}
