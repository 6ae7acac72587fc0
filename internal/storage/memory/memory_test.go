package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestSeededLedger(t *testing.T) {
	repo := NewSeeded("demo")

	txs, err := repo.FetchAll(context.Background(), "demo")
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(txs) != 8 {
		t.Fatalf("seeded ledger should have 8 transactions, got %d", len(txs))
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			t.Errorf("seeded transaction %s invalid: %v", tx.ID, err)
		}
	}

	// Seeding is per-user.
	other, err := repo.FetchAll(context.Background(), "someone-else")
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("other users should start empty, got %d", len(other))
	}
}

func TestInsertAssignsID(t *testing.T) {
	repo := New()
	tx := core.Transaction{
		Amount:      core.Money{Cents: 500},
		Category:    "Food",
		Description: "Lunch",
		Date:        core.NewDate(2024, 3, 1),
		Type:        core.Expense,
	}

	saved, err := repo.Insert(context.Background(), "u", tx)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("Insert should assign an id")
	}

	txs, _ := repo.FetchAll(context.Background(), "u")
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
}

func TestDelete(t *testing.T) {
	repo := NewSeeded("demo")

	if err := repo.Delete(context.Background(), "demo", "sample-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	txs, _ := repo.FetchAll(context.Background(), "demo")
	if len(txs) != 7 {
		t.Fatalf("expected 7 after delete, got %d", len(txs))
	}

	if err := repo.Delete(context.Background(), "demo", "sample-1"); !errors.Is(err, ErrNoRow) {
		t.Fatalf("second delete = %v, want ErrNoRow", err)
	}
}

func TestFetchAllReturnsCopy(t *testing.T) {
	repo := NewSeeded("demo")

	txs, _ := repo.FetchAll(context.Background(), "demo")
	txs[0].Category = "Tampered"

	again, _ := repo.FetchAll(context.Background(), "demo")
	if again[0].Category == "Tampered" {
		t.Fatal("FetchAll must return a copy")
	}
}
