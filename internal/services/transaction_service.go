// Package services coordinates store mutations with event publication.
package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// EventPublisher announces ledger mutations to downstream consumers.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, id, userID string) error
	PublishTransactionDeleted(ctx context.Context, id, userID string) error
	Close() error
}

// TransactionService mutates the store and then publishes the matching
// event. Publication is best effort: a broker failure is logged and the
// mutation stands, since the periodic export sweep picks up missed records.
type TransactionService struct {
	store  *store.Store
	events EventPublisher
	logger *log.Logger
}

// NewTransactionService wires a service over the store. events may be nil
// when no broker is configured (memory backend, tests).
func NewTransactionService(st *store.Store, events EventPublisher) *TransactionService {
	return &TransactionService{
		store:  st,
		events: events,
		logger: log.Default(log.ComponentTransaction),
	}
}

func (s *TransactionService) Create(ctx context.Context, entry core.Transaction) (core.Transaction, error) {
	saved, err := s.store.Add(ctx, entry)
	if err != nil {
		return core.Transaction{}, err
	}

	if s.events != nil {
		if err := s.events.PublishTransactionCreated(ctx, saved.ID, s.store.UserID()); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish created event",
				log.FieldError, err,
				log.FieldOperation, log.OpCreate,
				log.FieldTransactionID, saved.ID)
		}
	}
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishTransactionDeleted(ctx, id, s.store.UserID()); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish deleted event",
				log.FieldError, err,
				log.FieldOperation, log.OpDelete,
				log.FieldTransactionID, id)
		}
	}
	return nil
}

func (s *TransactionService) Close() error {
	if s.events != nil {
		return s.events.Close()
	}
	return nil
}
