package backend

import (
	"context"

	"salesbook/internal/amqp"
	"salesbook/internal/tables"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the record store, the optional sale publisher and
// a cleanup function closing both.
type BackendResult struct {
	Store     tables.Store
	Publisher *amqp.Client // nil when mirroring is disabled
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType names a record store implementation.
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) IsValid() bool {
	switch t {
	case CSVBackend, MemoryBackend, SQLiteBackend:
		return true
	}
	return false
}

func (t BackendType) String() string { return string(t) }
