// Package sheets defines the export target ports implemented by the Google
// Sheets adapter.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Exporter mirrors ledger records to an external spreadsheet.
type Exporter interface {
	// Append adds one transaction row and returns a reference to it.
	Append(ctx context.Context, userID string, tx core.Transaction) (string, error)
	// Remove deletes the row holding the transaction with the given id.
	Remove(ctx context.Context, userID string, id string) error
}
