package ddlgen

import (
	"strconv"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-costdw/internal/ingest"
)

// ColumnType is a MySQL column type.
type ColumnType string

// Inferred column types.
const (
	Int      ColumnType = "INT"
	Float    ColumnType = "FLOAT"
	Boolean  ColumnType = "BOOLEAN"
	DateTime ColumnType = "DATETIME"
	Varchar  ColumnType = "VARCHAR(255)"
)

// dateLayouts are the value formats recognized as DATETIME.
var dateLayouts = []string{
	time.DateTime,
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Column is a CSV column and its inferred type.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Type ColumnType `json:"type" yaml:"type"`
}

// InferType picks the narrowest type holding every value. Integers with
// missing values widen to FLOAT and a column with no values at all is
// FLOAT, so missing cells can load as NULL. Booleans and dates with
// missing values fall back to VARCHAR(255).
func InferType(values []string) ColumnType {
	present := 0
	ints, floats, bools, dates := true, true, true, true
	for _, v := range values {
		if ingest.IsNull(v) {
			continue
		}
		present++
		v = strings.TrimSpace(v)
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			ints = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			floats = false
		}
		if _, ok := parseBool(v); !ok {
			bools = false
		}
		if _, ok := parseTime(v); !ok {
			dates = false
		}
	}

	missing := present < len(values)
	switch {
	case present == 0:
		return Float
	case ints && !missing:
		return Int
	case ints || floats:
		return Float
	case bools && !missing:
		return Boolean
	case dates && !missing:
		return DateTime
	default:
		return Varchar
	}
}

// InferColumns infers a type for every column of t.
func InferColumns(t *ingest.Table) []Column {
	cols := make([]Column, 0, len(t.Header))
	for _, name := range t.Header {
		name = strings.TrimSpace(name)
		values := make([]string, len(t.Rows))
		for i := range t.Rows {
			values[i] = t.Get(i, name)
		}
		cols = append(cols, Column{Name: name, Type: InferType(values)})
	}
	return cols
}

// Convert turns a CSV value into the argument stored in a column of type
// typ. Missing values are nil.
func Convert(typ ColumnType, v string) any {
	if ingest.IsNull(v) {
		return nil
	}
	v = strings.TrimSpace(v)
	switch typ {
	case Int:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case Float:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case Boolean:
		b, _ := parseBool(v)
		return b
	case DateTime:
		ts, _ := parseTime(v)
		return ts
	default:
		return v
	}
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
