package db

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour of a store.
type Dialect string

// Supported dialects.
const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
	MySQL    Dialect = "mysql"
)

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
// Statements must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValuesList returns rows groups of cols '?' placeholders, e.g.
// "(?, ?), (?, ?)" for rows=2, cols=2.
func ValuesList(rows, cols int) string {
	if rows < 1 || cols < 1 {
		return ""
	}
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", cols), ", ") + ")"
	return strings.TrimSuffix(strings.Repeat(group+", ", rows), ", ")
}

// tableExistsSQL returns a query taking the table name as its only argument.
func (d Dialect) tableExistsSQL() string {
	if d == Postgres {
		return `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )`
	}
	if d == MySQL {
		return `
        SELECT EXISTS (
            SELECT 1 FROM information_schema.tables
            WHERE table_schema = DATABASE() AND table_name = ?
        )`
	}
	return `
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type = 'table' AND name = ?
        )`
}
