package database

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type openFunc func(ctx context.Context, config Config, tables []Table) (TabularStore, error)

// Connector opens stores lazily and keeps them for the lifetime of the process,
// one handle per configuration fingerprint. A failed open is not cached.
type Connector struct {
	mu     sync.Mutex
	open   openFunc
	tables []Table
	stores map[string]TabularStore
}

func NewConnector(tables []Table) *Connector {
	return newConnector(NewDatabase, tables)
}

func newConnector(open openFunc, tables []Table) *Connector {
	return &Connector{
		open:   open,
		tables: tables,
		stores: make(map[string]TabularStore),
	}
}

// Store returns the shared handle for config, opening it on first use.
func (c *Connector) Store(ctx context.Context, config Config) (TabularStore, error) {
	key := config.Fingerprint()

	c.mu.Lock()
	defer c.mu.Unlock()

	if store, ok := c.stores[key]; ok {
		return store, nil
	}

	store, err := c.open(ctx, config, c.tables)
	if err != nil {
		slog.Error("failed to open tabular store", "type", config.Type, "error", err)
		if !errors.Is(err, ErrStoreUnavailable) {
			err = unavailable(err)
		}
		return nil, err
	}
	c.stores[key] = store
	return store, nil
}

// Close closes every cached store.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for key, store := range c.stores {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(c.stores, key)
	}
	return errors.Join(errs...)
}
