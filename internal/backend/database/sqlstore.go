package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
)

// dialect captures the few statements that differ between SQL backends.
type dialect struct {
	driver      string
	rowID       string
	placeholder func(n int) string
}

// SQLDatabase keeps each table as a SQL table of TEXT columns plus an increasing row_id.
type SQLDatabase struct {
	db               *sql.DB
	dialect          dialect
	connectionString string
}

func openSQLDatabase(ctx context.Context, d dialect, connectionString string, tables []Table, maxOpen int) (*SQLDatabase, error) {
	db, err := sql.Open(d.driver, connectionString)
	if err != nil {
		return nil, unavailable(err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable(err)
	}

	s := &SQLDatabase{
		db:               db,
		dialect:          d,
		connectionString: connectionString,
	}
	if err := s.createTables(ctx, tables); err != nil {
		_ = db.Close()
		return nil, unavailable(err)
	}
	return s, nil
}

func (s *SQLDatabase) createTables(ctx context.Context, tables []Table) error {
	for _, table := range tables {
		columns := make([]string, 0, len(table.Columns)+1)
		columns = append(columns, "row_id "+s.dialect.rowID)
		for _, column := range table.Columns {
			columns = append(columns, quoteIdent(column)+" TEXT NOT NULL DEFAULT ''")
		}
		statement := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table.Name), strings.Join(columns, ", "))
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.Name, err)
		}
	}
	return nil
}

func (s *SQLDatabase) ReadAll(ctx context.Context, table Table) ([]Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY row_id", quoteColumns(table.Columns), quoteIdent(table.Name))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, unavailable(err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []Record{}
	for rows.Next() {
		cells := make([]sql.NullString, len(table.Columns))
		targets := make([]any, len(cells))
		for i := range cells {
			targets[i] = &cells[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, unavailable(err)
		}
		values := make([]string, len(cells))
		for i, cell := range cells {
			values[i] = cell.String
		}
		records = append(records, table.Decode(table.Columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return records, nil
}

func (s *SQLDatabase) Append(ctx context.Context, table Table, values []string) error {
	if err := table.checkArity(values); err != nil {
		return err
	}

	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, value := range values {
		placeholders[i] = s.dialect.placeholder(i + 1)
		args[i] = value
	}
	statement := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table.Name), quoteColumns(table.Columns), strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, statement, args...); err != nil {
		return classifySQLWriteError(err)
	}
	return nil
}

func (s *SQLDatabase) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *SQLDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// classifySQLWriteError separates lost connections from statements the server refused.
func classifySQLWriteError(err error) error {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return unavailable(err)
	}
	return rejected(err)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = quoteIdent(column)
	}
	return strings.Join(quoted, ", ")
}
