// Package storage implements the SQLite persistence collaborator.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

// ErrNoRow reports an operation that matched no stored transaction.
var ErrNoRow = errors.New("no matching row")

// SQLiteRepository stores transactions in a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (and creates if needed) the database at path and
// applies pending migrations.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// modernc sqlite serializes writes itself; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// FetchAll returns the user's transactions, newest date first.
func (r *SQLiteRepository) FetchAll(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, category, description, date, type
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// Insert persists a new transaction, assigning an id when none is set.
func (r *SQLiteRepository) Insert(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = core.NewID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount_cents, category, description, date, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, userID, tx.Amount.Cents, tx.Category, tx.Description,
		tx.Date.ISO(), string(tx.Type), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

// Delete removes a transaction by id, reporting ErrNoRow when absent.
func (r *SQLiteRepository) Delete(ctx context.Context, userID string, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return ErrNoRow
	}
	return nil
}

// GetTransaction fetches a single transaction by id for any user, used by the
// export worker when handling a created event.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount_cents, category, description, date, type
		FROM transactions WHERE id = ?`, id)

	var tx core.Transaction
	var userID, date, txType string
	err := row.Scan(&tx.ID, &userID, &tx.Amount.Cents, &tx.Category, &tx.Description, &date, &txType)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, "", ErrNoRow
	}
	if err != nil {
		return core.Transaction{}, "", fmt.Errorf("get transaction: %w", err)
	}
	tx.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, "", fmt.Errorf("get transaction: %w", err)
	}
	tx.Type = core.TxType(txType)
	return tx, userID, nil
}

// GetPendingExport lists transactions not yet mirrored to the export target,
// oldest first, up to limit. Rows that previously failed are retried.
func (r *SQLiteRepository) GetPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, category, description, date, type
		FROM transactions
		WHERE exported_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending export: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// MarkExported records a successful mirror of the transaction.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET exported_at = ?, export_error = 0 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// MarkExportError flags a failed mirror attempt so the sweep retries it.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_error = export_error + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var tx core.Transaction
	var date, txType string
	if err := rows.Scan(&tx.ID, &tx.Amount.Cents, &tx.Category, &tx.Description, &date, &txType); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction date %q: %w", date, err)
	}
	tx.Date = d
	tx.Type = core.TxType(txType)
	return tx, nil
}
