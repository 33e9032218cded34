package database

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable reports that the store could not be reached or authenticated.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreWrite reports that the store was reachable but refused an append.
	ErrStoreWrite = errors.New("store rejected write")
)

// TabularStore is an append-only store of named tables.
type TabularStore interface {
	// ReadAll returns every data row of the table in insertion order.
	// An empty table yields an empty slice and no error.
	ReadAll(ctx context.Context, table Table) ([]Record, error)
	// Append adds one row; values are positional in table.Columns order.
	Append(ctx context.Context, table Table, values []string) error
	Ping(ctx context.Context) error
	Close() error
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func rejected(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreWrite, err)
}
