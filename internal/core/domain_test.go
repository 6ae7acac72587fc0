package core

import (
	"errors"
	"strings"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "tx-1",
		Amount:      Money{Cents: 1250},
		Category:    "Food",
		Description: "Groceries",
		Date:        NewDate(2024, 1, 15),
		Type:        Expense,
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid expense", func(tx *Transaction) {}, nil},
		{"valid income", func(tx *Transaction) { tx.Type = Income }, nil},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"whitespace category", func(tx *Transaction) { tx.Category = "   " }, ErrEmptyCategory},
		{"empty description", func(tx *Transaction) { tx.Description = "" }, ErrEmptyDescription},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"unknown type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"empty type", func(tx *Transaction) { tx.Type = "" }, ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionValidateLongDescription(t *testing.T) {
	tx := validTransaction()
	tx.Description = strings.Repeat("x", 101)
	if err := tx.Validate(); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("Validate() = %v, want ErrDescriptionTooLong", err)
	}

	tx.Description = strings.Repeat("x", 100)
	if err := tx.Validate(); err != nil {
		t.Fatalf("100-char description should be valid, got %v", err)
	}
}

func TestSigned(t *testing.T) {
	income := validTransaction()
	income.Type = Income
	if got := income.Signed(); got != 1250 {
		t.Fatalf("income Signed() = %d, want 1250", got)
	}

	expense := validTransaction()
	if got := expense.Signed(); got != -1250 {
		t.Fatalf("expense Signed() = %d, want -1250", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.ISO() != "2024-01-15" {
		t.Fatalf("ISO() = %q, want 2024-01-15", d.ISO())
	}

	for _, bad := range []string{"", "15/01/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || a == b {
		t.Fatalf("NewID should return unique non-empty ids, got %q and %q", a, b)
	}
}
