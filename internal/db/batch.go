package db

import (
	"context"
	"fmt"
	"strings"
)

// BatchInsert inserts rows into table with one multi-row INSERT per
// batchSize rows. suffix is appended to every statement, e.g. an
// ON CONFLICT clause. onBatch, when set, is called with the size of each
// executed batch. It returns the number of rows the store reports as
// affected.
func BatchInsert(ctx context.Context, q Querier, dialect Dialect, table string, columns []string,
	rows [][]any, batchSize int, suffix string, onBatch func(n int)) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize < 1 {
		batchSize = len(rows)
	}

	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	var affected int64
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		batch := rows[start:end]

		args := make([]any, 0, len(batch)*len(columns))
		for _, row := range batch {
			if len(row) != len(columns) {
				return affected, fmt.Errorf("row has %d values, %s expects %d", len(row), table, len(columns))
			}
			args = append(args, row...)
		}

		stmt := prefix + ValuesList(len(batch), len(columns))
		if suffix != "" {
			stmt += " " + suffix
		}

		res, err := q.ExecContext(ctx, dialect.Rebind(stmt), args...)
		if err != nil {
			return affected, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			affected += n
		}
		if onBatch != nil {
			onBatch(len(batch))
		}
	}

	return affected, nil
}
