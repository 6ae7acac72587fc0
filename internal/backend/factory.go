package backend

import (
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// Factory constructs backends from configuration
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	return &Factory{logger: log.Wrap(logger, log.ComponentBackend)}
}

// CreateBackend builds the repository and optional event publisher for the
// configured backend type.
func (f *Factory) CreateBackend(cfg Config, ledgerUser string) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(cfg)
	case MemoryBackend:
		return f.createMemoryBackend(ledgerUser)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *Factory) createSQLiteBackend(cfg Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without a broker the export sweep still catches up.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			events = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", events != nil)

	result := &Result{
		Repo: repo,
		Cleanup: func() {
			if events != nil {
				events.Close()
			}
			repo.Close()
		},
	}
	if events != nil {
		result.Events = events
	}
	return result, nil
}

func (f *Factory) createMemoryBackend(ledgerUser string) (*Result, error) {
	f.logger.Info("Initialized memory backend with sample ledger", log.FieldUserID, ledgerUser)
	return &Result{
		Repo:    memory.NewSeeded(ledgerUser),
		Cleanup: nil,
	}, nil
}
