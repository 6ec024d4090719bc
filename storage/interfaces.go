package storage

import (
	"context"

	"resale-explorer/models"
)

// RecordSource is the interface any dataset backend must satisfy. Read returns
// every row in source order; it is called once per process.
type RecordSource interface {
	Read(ctx context.Context) ([]*models.RawTransaction, error)
	Name() string
	Close() error
}
