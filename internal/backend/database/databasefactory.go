package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
)

const (
	TypeSheets   = "sheets"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeRedis    = "redis"
)

// SupportedTypes lists the store backends NewDatabase can open.
var SupportedTypes = []string{TypeSheets, TypeSQLite, TypePostgres, TypeRedis}

// Config selects and addresses one store backend.
type Config struct {
	Type             string
	ID               string // spreadsheet id for sheets
	Credentials      []byte // credential bundle for sheets
	ConnectionString string // DSN or URL for sqlite, postgres and redis
	KeyPrefix        string // redis key namespace
}

// Fingerprint identifies a configuration; equal configurations share one connection.
func (c Config) Fingerprint() string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(c.Type), []byte(c.ID), c.Credentials, []byte(c.ConnectionString), []byte(c.KeyPrefix)} {
		_, _ = fmt.Fprintf(h, "%d:", len(part))
		_, _ = h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewDatabase opens the configured backend and makes sure the given tables exist
// where the backend needs them declared up front.
func NewDatabase(ctx context.Context, config Config, tables []Table) (database TabularStore, err error) {
	switch config.Type {
	case TypeSheets:
		database, err = NewSheetsDatabase(ctx, config.ID, config.Credentials)
	case TypeSQLite:
		database, err = NewSQLiteDatabase(ctx, config.ConnectionString, tables)
	case TypePostgres:
		database, err = NewPostgresDatabase(ctx, config.ConnectionString, tables)
	case TypeRedis:
		database, err = NewRedisDatabase(ctx, config.ConnectionString, config.KeyPrefix)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("tabular store opened", "type", config.Type, "tables", len(tables))
	return database, nil
}
