// Package worker mirrors ledger mutations to the spreadsheet export target.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ExportWorker consumes transaction events and keeps the spreadsheet mirror
// in step with the SQLite ledger. A periodic sweep retries records whose
// export previously failed or whose event was lost.
type ExportWorker struct {
	repo     *storage.SQLiteRepository
	exporter sheets.Exporter
	logger   *log.Logger
}

func NewExportWorker(repo *storage.SQLiteRepository, exporter sheets.Exporter) *ExportWorker {
	return &ExportWorker{
		repo:     repo,
		exporter: exporter,
		logger:   log.Default(log.ComponentWorker),
	}
}

// HandleEvent processes one transaction event. Errors are returned so the
// consumer nacks and requeues, except for records that no longer exist.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	switch event.Event {
	case amqp.EventTransactionCreated:
		return w.exportCreated(ctx, event.ID)
	case amqp.EventTransactionDeleted:
		return w.exportDeleted(ctx, event.UserID, event.ID)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type", "event", event.Event)
		return nil
	}
}

func (w *ExportWorker) exportCreated(ctx context.Context, id string) error {
	tx, userID, err := w.repo.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNoRow) {
		// Deleted before we got here; nothing to mirror.
		w.logger.InfoContext(ctx, "Transaction gone before export", log.FieldTransactionID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", id, err)
	}

	ref, err := w.exporter.Append(ctx, userID, tx)
	if err != nil {
		if markErr := w.repo.MarkExportError(ctx, id); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to record export error",
				log.FieldError, markErr, log.FieldTransactionID, id)
		}
		return fmt.Errorf("append transaction %s: %w", id, err)
	}

	if err := w.repo.MarkExported(ctx, id); err != nil {
		return fmt.Errorf("mark exported %s: %w", id, err)
	}

	w.logger.InfoContext(ctx, "Exported transaction",
		log.FieldTransactionID, id, log.FieldSheetsRef, ref)
	return nil
}

func (w *ExportWorker) exportDeleted(ctx context.Context, userID, id string) error {
	if err := w.exporter.Remove(ctx, userID, id); err != nil {
		return fmt.Errorf("remove transaction %s: %w", id, err)
	}
	w.logger.InfoContext(ctx, "Removed exported transaction", log.FieldTransactionID, id)
	return nil
}

// Sweep exports up to batchSize records still pending, oldest first. It
// returns the number successfully exported; individual failures are logged
// and left pending for the next sweep.
func (w *ExportWorker) Sweep(ctx context.Context, batchSize int) (int, error) {
	pending, err := w.repo.GetPendingExport(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending export: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Export sweep starting", "pending", len(pending))

	exported := 0
	for _, tx := range pending {
		if ctx.Err() != nil {
			return exported, ctx.Err()
		}
		if err := w.exportCreated(ctx, tx.ID); err != nil {
			w.logger.ErrorContext(ctx, "Sweep export failed",
				log.FieldError, err, log.FieldTransactionID, tx.ID)
			continue
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Export sweep done", "exported", exported, "pending", len(pending))
	return exported, nil
}
