package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/roach88/graphstmt/internal/engine"
)

var _ engine.Session = (*Store)(nil)

// Execute runs query with params bound by name.
//
// Rows are fully materialized before returning. Statements without result
// columns report the number of rows they changed as a single
// TotalCompleted record. Driver errors are returned unwrapped.
func (s *Store) Execute(ctx context.Context, query string, params map[string]any) (engine.Result, error) {
	// changes() and total_changes() are per connection, so the statement
	// and the reads around it must share one.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	before, err := totalChanges(ctx, conn)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, err
	}
	records, columns, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		return records, nil
	}

	// changes() keeps the count of the last INSERT, UPDATE or DELETE, so
	// DDL would report a stale value. total_changes() only moves when this
	// statement changed rows, but it also counts cascaded deletes.
	after, err := totalChanges(ctx, conn)
	if err != nil {
		return nil, err
	}
	var changed int64
	if after != before {
		if err := conn.QueryRowContext(ctx, "SELECT changes()").Scan(&changed); err != nil {
			return nil, fmt.Errorf("read changes: %w", err)
		}
	}
	return engine.Records{{engine.TotalCompletedKey: changed}}, nil
}

func totalChanges(ctx context.Context, conn *sql.Conn) (int64, error) {
	var n int64
	if err := conn.QueryRowContext(ctx, "SELECT total_changes()").Scan(&n); err != nil {
		return 0, fmt.Errorf("read total changes: %w", err)
	}
	return n, nil
}

// namedArgs converts params to sql.Named arguments in key order.
func namedArgs(params map[string]any) []any {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = sql.Named(k, params[k])
	}
	return args
}

// scanRecords drains and closes rows. For statements without result
// columns, draining is what steps the statement to completion.
func scanRecords(rows *sql.Rows) (engine.Records, []string, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	records := engine.Records{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}

		rec := make(engine.Record, len(columns))
		for i, col := range columns {
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, nil, err
	}

	return records, columns, nil
}
