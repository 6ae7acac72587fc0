// Package memory provides an in-memory persistence collaborator for demo
// and offline use. State lives for the process lifetime only.
package memory

import (
	"context"
	"errors"
	"sync"

	"fintrack/internal/core"
)

// ErrNoRow reports an operation that matched no stored transaction.
var ErrNoRow = errors.New("no matching row")

type Repository struct {
	mu   sync.Mutex
	data map[string][]core.Transaction
}

func New() *Repository {
	return &Repository{data: make(map[string][]core.Transaction)}
}

// NewSeeded returns a repository preloaded with a small sample ledger for
// the given user, so the demo backend renders a populated dashboard.
func NewSeeded(userID string) *Repository {
	r := New()
	r.data[userID] = sampleLedger()
	return r
}

func (r *Repository) FetchAll(_ context.Context, userID string) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]core.Transaction, len(r.data[userID]))
	copy(out, r.data[userID])
	return out, nil
}

func (r *Repository) Insert(_ context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.ID == "" {
		tx.ID = core.NewID()
	}
	r.data[userID] = append(r.data[userID], tx)
	return tx, nil
}

func (r *Repository) Delete(_ context.Context, userID string, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.data[userID]
	for i, tx := range items {
		if tx.ID == id {
			r.data[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNoRow
}

func sampleLedger() []core.Transaction {
	return []core.Transaction{
		{
			ID:          "sample-1",
			Amount:      core.Money{Cents: 7500000},
			Category:    "Income",
			Description: "Pocket Money",
			Date:        core.NewDate(2024, 1, 1),
			Type:        core.Income,
		},
		{
			ID:          "sample-2",
			Amount:      core.Money{Cents: 850000},
			Category:    "Food",
			Description: "Groceries and dining",
			Date:        core.NewDate(2024, 1, 3),
			Type:        core.Expense,
		},
		{
			ID:          "sample-3",
			Amount:      core.Money{Cents: 250000},
			Category:    "Transportation",
			Description: "Fuel and metro card",
			Date:        core.NewDate(2024, 1, 5),
			Type:        core.Expense,
		},
		{
			ID:          "sample-4",
			Amount:      core.Money{Cents: 120000},
			Category:    "Entertainment",
			Description: "Movie night",
			Date:        core.NewDate(2024, 1, 7),
			Type:        core.Expense,
		},
		{
			ID:          "sample-5",
			Amount:      core.Money{Cents: 450000},
			Category:    "Utilities",
			Description: "Electricity bill",
			Date:        core.NewDate(2024, 1, 10),
			Type:        core.Expense,
		},
		{
			ID:          "sample-6",
			Amount:      core.Money{Cents: 7500000},
			Category:    "Income",
			Description: "Pocket Money",
			Date:        core.NewDate(2024, 2, 1),
			Type:        core.Income,
		},
		{
			ID:          "sample-7",
			Amount:      core.Money{Cents: 920000},
			Category:    "Food",
			Description: "Groceries and dining",
			Date:        core.NewDate(2024, 2, 3),
			Type:        core.Expense,
		},
		{
			ID:          "sample-8",
			Amount:      core.Money{Cents: 180000},
			Category:    "Transportation",
			Description: "Fuel",
			Date:        core.NewDate(2024, 2, 5),
			Type:        core.Expense,
		},
	}
}
