// Package nlsql turns storefront questions into single, read-only SQL
// statements: schema grounding context, model-backed query generation, and
// the sanitizer that gates what may reach the executor.
package nlsql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopchat/shopchat/internal/store"
)

// Table describes one introspected table: declared columns plus a small
// sample of real rows for grounding.
type Table struct {
	Name       string
	Columns    []store.ColumnInfo
	SampleRows []store.Row
}

// Schema is the per-request description of the database. It is built
// fresh for every question and never persisted.
type Schema struct {
	Tables []Table
}

// Describe introspects the store: one table listing plus a column listing
// and a bounded sample read per table.
func Describe(ctx context.Context, introspector store.Introspector, sampleRows int) (Schema, error) {
	names, err := introspector.ListTableNames(ctx)
	if err != nil {
		return Schema{}, fmt.Errorf("describe schema: %w", err)
	}

	schema := Schema{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		columns, err := introspector.ListColumns(ctx, name)
		if err != nil {
			return Schema{}, fmt.Errorf("describe schema: %w", err)
		}
		samples, err := introspector.SampleRows(ctx, name, sampleRows)
		if err != nil {
			return Schema{}, fmt.Errorf("describe schema: %w", err)
		}
		schema.Tables = append(schema.Tables, Table{
			Name:       name,
			Columns:    columns,
			SampleRows: samples,
		})
	}
	return schema, nil
}

// Render serializes the schema as prompt text. Output is deterministic for
// a given schema: tables and columns keep introspection order, and sample
// rows are JSON objects with sorted keys.
func (s Schema) Render() string {
	var b strings.Builder
	for i, table := range s.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Table: ")
		b.WriteString(table.Name)
		b.WriteString("\nColumns: ")
		for j, col := range table.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(col.Name)
			b.WriteString(" (")
			b.WriteString(col.Type)
			b.WriteString(")")
		}
		b.WriteString("\n")
		if len(table.SampleRows) > 0 {
			b.WriteString("Sample rows:\n")
			for _, row := range table.SampleRows {
				encoded, err := json.Marshal(row)
				if err != nil {
					continue
				}
				b.Write(encoded)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
