// Package backend builds the persistence collaborator and event publisher
// selected by configuration.
package backend

import (
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// Type identifies a persistence backend
type Type string

const (
	// MemoryBackend keeps the ledger in process memory, seeded with sample data
	MemoryBackend Type = "memory"
	// SQLiteBackend stores the ledger in a local SQLite database
	SQLiteBackend Type = "sqlite"
)

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config selects and parameterizes a backend
type Config struct {
	Type         Type
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Result is a constructed backend: the repository behind the store, the
// optional event publisher, and a cleanup hook for shutdown.
type Result struct {
	Repo    store.Repository
	Events  services.EventPublisher
	Cleanup func()
}
