package database

import (
	"context"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	driver:      "sqlite",
	rowID:       "INTEGER PRIMARY KEY AUTOINCREMENT",
	placeholder: func(int) string { return "?" },
}

// NewSQLiteDatabase opens a SQLite file (or ":memory:") as a tabular store.
// A single connection is used so that in-memory databases keep their tables.
func NewSQLiteDatabase(ctx context.Context, connectionString string, tables []Table) (TabularStore, error) {
	return openSQLDatabase(ctx, sqliteDialect, connectionString, tables, 1)
}
