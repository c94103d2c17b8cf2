//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ingest reads the CSV sources and loads the flat tables.
package ingest

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table is a CSV file held in memory with its header indexed by name.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// ReadCSV reads a whole CSV file. The first record is the header.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// ParseCSV reads CSV records from r. The first record is the header.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &Table{
		Header: header,
		Rows:   records[1:],
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		t.index[strings.TrimSpace(name)] = i
	}
	return t, nil
}

// Has reports whether the table has the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Require returns an error naming the first missing column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("missing column %q", c)
		}
	}
	return nil
}

// Get returns the trimmed cell of row i in column col; "" when absent.
func (t *Table) Get(i int, col string) string {
	j, ok := t.index[col]
	if !ok || j >= len(t.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][j])
}

// IsNull reports whether a cell holds a missing value.
func IsNull(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "null", "none", "n/a", "na":
		return true
	}
	return false
}

// ParseFloat parses a numeric cell; missing values are returned invalid.
func ParseFloat(s string) (sql.NullFloat64, error) {
	if IsNull(s) {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	if math.IsNaN(f) {
		return sql.NullFloat64{}, nil
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

// ParseText returns "" for missing values.
func ParseText(s string) string {
	if IsNull(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// FormatFloat renders a nullable float for CSV output; missing is "".
func FormatFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
