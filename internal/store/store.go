// Package store keeps the authoritative in-session transaction list and
// mediates every mutation through a persistence collaborator.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/core"
)

var (
	// ErrNotFound reports a remove for an id not present in the list.
	ErrNotFound = errors.New("transaction not found")
	// ErrPersistence reports a failed remote write; the local list is unchanged.
	ErrPersistence = errors.New("persistence failure")
	// ErrFetch reports a failed load; the previously loaded list is kept.
	ErrFetch = errors.New("fetch failure")
)

// Repository is the persistence collaborator behind the store.
type Repository interface {
	// FetchAll returns every transaction recorded for the user.
	FetchAll(ctx context.Context, userID string) ([]core.Transaction, error)
	// Insert persists a new transaction and returns it with its assigned id.
	Insert(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error)
	// Delete removes a transaction by id.
	Delete(ctx context.Context, userID string, id string) error
}

// Store holds the single in-session transaction list for one user.
// All operations serialize on an internal mutex, so concurrent adds and
// removes never interleave their read-check-write sequences.
type Store struct {
	repo   Repository
	userID string

	mu      sync.Mutex
	items   []core.Transaction
	version uint64
}

func New(repo Repository, userID string) *Store {
	return &Store{repo: repo, userID: userID}
}

// Load replaces the in-session list with the collaborator's current state.
// On failure the previous list is kept and the error wraps ErrFetch.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.FetchAll(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	s.items = items
	s.version++
	return nil
}

// Add validates the entry, persists it through the collaborator and appends
// the persisted record (with its assigned id) to the list. Validation errors
// surface the core sentinels before any remote call; remote failures wrap
// ErrPersistence and leave the list unchanged.
func (s *Store) Add(ctx context.Context, entry core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := entry.Validate(); err != nil {
		return core.Transaction{}, err
	}
	saved, err := s.repo.Insert(ctx, s.userID, entry)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.items = append(s.items, saved)
	s.version++
	return saved, nil
}

// Remove deletes the transaction with the given id, remotely then locally.
// An id not present in the list returns ErrNotFound without any remote call.
// A remote failure wraps ErrPersistence and leaves the list unchanged.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, tx := range s.items {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, s.userID, id); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.version++
	return nil
}

// List returns a copy of the current transaction list. Callers may sort or
// filter the copy freely.
func (s *Store) List() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out
}

// Version is a counter bumped on every successful mutation. Consumers use it
// as a memoization key: derived views computed at one version stay valid
// until the version moves.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// UserID returns the ledger owner this store was opened for.
func (s *Store) UserID() string {
	return s.userID
}
