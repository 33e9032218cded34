package database

import "fmt"

// Record is a single row keyed by column name.
type Record map[string]string

// Table describes one sheet of the store: its name and the ordered columns.
// The same column order is used to encode appends and to decode reads.
type Table struct {
	Name    string
	Columns []string
}

// Encode returns the record's values in column order. Missing columns encode as "".
func (t Table) Encode(record Record) []string {
	values := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		values[i] = record[column]
	}
	return values
}

// Decode maps positional values onto the given header. Cells missing at the end of a
// row decode as "", cells beyond the header are dropped. Every column of the table is
// present in the result even when the header lacks it.
func (t Table) Decode(header, values []string) Record {
	record := make(Record, len(t.Columns))
	for _, column := range t.Columns {
		record[column] = ""
	}
	for i, column := range header {
		if column == "" {
			continue
		}
		if i < len(values) {
			record[column] = values[i]
		} else if _, ok := record[column]; !ok {
			record[column] = ""
		}
	}
	return record
}

func (t Table) checkArity(values []string) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("%w: table %s expects %d values, got %d", ErrStoreWrite, t.Name, len(t.Columns), len(values))
	}
	return nil
}
