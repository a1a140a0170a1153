package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"salesbook/internal/amqp"
	"salesbook/internal/storage"
	"salesbook/internal/tables"
	"salesbook/internal/tables/csvfile"
	"salesbook/internal/tables/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store tables.Store
		err   error
	)
	switch config.Type {
	case CSVBackend:
		store, err = f.createCSVStore(config)
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store, err = f.createMemoryStore(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	publisher := f.createPublisher(config)

	result := &BackendResult{Store: store, Cleanup: store.Close}
	if publisher != nil {
		result.Publisher = publisher
		result.Cleanup = func() error {
			return errors.Join(publisher.Close(), store.Close())
		}
	}
	return result, nil
}

func (f *DefaultFactory) createCSVStore(config Config) (tables.Store, error) {
	store, err := csvfile.Open(config.DataDirectory, config.IDPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv tables: %w", err)
	}
	f.logger.Info("Initialized csv backend",
		"data_directory", config.DataDirectory,
		"id_policy", config.IDPolicy)
	return store, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (tables.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.IDPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"id_policy", config.IDPolicy)
	return repo, nil
}

// createMemoryStore seeds the in-memory tables from DataDirectory when it
// already holds csv tables. Writes never reach the files.
func (f *DefaultFactory) createMemoryStore(ctx context.Context, config Config) (tables.Store, error) {
	if config.DataDirectory == "" {
		f.logger.Info("Initialized empty memory backend")
		return memory.New(config.IDPolicy), nil
	}
	if _, err := os.Stat(config.DataDirectory); errors.Is(err, os.ErrNotExist) {
		f.logger.Info("Initialized empty memory backend", "data_directory", config.DataDirectory)
		return memory.New(config.IDPolicy), nil
	}

	seed, err := csvfile.Open(config.DataDirectory, config.IDPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed tables: %w", err)
	}
	snapshot, err := tables.Snapshot(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed tables: %w", err)
	}

	f.logger.Info("Initialized memory backend",
		"data_directory", config.DataDirectory,
		"customers", len(snapshot.Customers),
		"products", len(snapshot.Products),
		"sales", len(snapshot.Sales))
	return memory.NewSeeded(config.IDPolicy, snapshot), nil
}

// createPublisher returns nil when AMQP is disabled or unreachable; recording
// sales never depends on the broker.
func (f *DefaultFactory) createPublisher(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without mirror", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
