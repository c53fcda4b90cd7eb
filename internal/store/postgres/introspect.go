package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopchat/shopchat/internal/store"
)

// ListTableNames returns the base tables of the public schema in the
// store's natural enumeration order.
func (r *Repository) ListTableNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

func (r *Repository) ListColumns(ctx context.Context, table string) ([]store.ColumnInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public' AND table_name = $1
ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("list columns for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []store.ColumnInfo
	for rows.Next() {
		var col store.ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list columns for %s: %w", table, err)
	}
	return columns, nil
}

// SampleRows reads up to limit rows of a table without any filter. The
// table name came from our own introspection queries, but it is quoted
// anyway since it is interpolated into the statement.
func (r *Repository) SampleRows(ctx context.Context, table string, limit int) ([]store.Row, error) {
	if limit <= 0 {
		limit = 3
	}
	sqlText := "SELECT * FROM " + quoteIdent(table) + " LIMIT " + strconv.Itoa(limit)
	rows, err := r.QueryRows(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("sample rows for %s: %w", table, err)
	}
	return rows, nil
}

// QueryRows executes a single statement and materializes every row as a
// column-name keyed map. Used for sanitized model-generated SQL and for
// the sample reads above.
func (r *Repository) QueryRows(ctx context.Context, sqlText string) ([]store.Row, error) {
	rows, err := r.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var result []store.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(store.Row, len(columns))
		for i, name := range columns {
			row[name] = normalizeValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	return result, nil
}

// normalizeValue maps driver byte slices to strings so downstream
// serialization and formatting see plain scalars.
func normalizeValue(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
