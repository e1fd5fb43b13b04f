// Package dataset provides the in-memory table model shared by the Cleaner
// and Partitioner: a header row plus ordered data rows, read from and
// written to comma-delimited UTF-8 files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Table is an ordered tabular dataset. Row order is significant end to end:
// downstream RDF subject identity may depend on row position.
type Table struct {
	Header []string
	Rows   [][]string
}

// NumRows returns the number of data rows (the header is not counted).
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1 if the table
// has no such column.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Slice returns a new Table sharing t's header and the rows in [from, to).
// The row slice is shared, not copied; callers must not mutate it.
func (t *Table) Slice(from, to int) *Table {
	return &Table{Header: t.Header, Rows: t.Rows[from:to]}
}

// ReadFile parses the CSV file at path into a Table. The first record is
// the header; every data row must have the same number of fields as the
// header (enforced by the csv reader).
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty, expected at least a header row", path)
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// WriteFile writes the table as CSV to path, overwriting any existing file.
// The write goes through a temporary file in the same directory followed by
// a rename, so a failure never leaves a truncated file at path.
func WriteFile(t *Table, path string) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write(t.Header)
	if writeErr == nil {
		writeErr = w.WriteAll(t.Rows)
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}

	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing dataset %s: %w", path, writeErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing dataset %s: %w", path, err)
	}

	return nil
}
