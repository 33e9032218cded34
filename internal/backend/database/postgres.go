package database

import (
	"context"
	"strconv"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	driver:      "postgres",
	rowID:       "BIGSERIAL PRIMARY KEY",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
}

// NewPostgresDatabase opens a PostgreSQL database as a tabular store.
func NewPostgresDatabase(ctx context.Context, connectionString string, tables []Table) (TabularStore, error) {
	return openSQLDatabase(ctx, postgresDialect, connectionString, tables, 0)
}
