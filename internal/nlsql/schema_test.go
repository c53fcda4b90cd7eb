package nlsql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopchat/shopchat/internal/store"
)

type fakeIntrospector struct {
	tables     []string
	columns    map[string][]store.ColumnInfo
	samples    map[string][]store.Row
	listErr    error
	columnsErr error
	calls      []string
}

func (f *fakeIntrospector) ListTableNames(context.Context) ([]string, error) {
	f.calls = append(f.calls, "tables")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tables, nil
}

func (f *fakeIntrospector) ListColumns(_ context.Context, table string) ([]store.ColumnInfo, error) {
	f.calls = append(f.calls, "columns:"+table)
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return f.columns[table], nil
}

func (f *fakeIntrospector) SampleRows(_ context.Context, table string, _ int) ([]store.Row, error) {
	f.calls = append(f.calls, "samples:"+table)
	return f.samples[table], nil
}

func TestDescribeVisitsEveryTable(t *testing.T) {
	intro := &fakeIntrospector{
		tables: []string{"products", "categories"},
		columns: map[string][]store.ColumnInfo{
			"products":   {{Name: "id", Type: "bigint"}, {Name: "title", Type: "text"}},
			"categories": {{Name: "id", Type: "bigint"}},
		},
		samples: map[string][]store.Row{
			"products": {{"id": int64(1), "title": "Steel Shelf"}},
		},
	}

	schema, err := Describe(context.Background(), intro, 3)
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if len(schema.Tables) != 2 {
		t.Fatalf("len(Tables) = %d", len(schema.Tables))
	}
	if schema.Tables[0].Name != "products" || schema.Tables[1].Name != "categories" {
		t.Fatalf("table order = %#v", schema.Tables)
	}
	// one table listing plus a column and sample read per table
	if len(intro.calls) != 5 {
		t.Fatalf("calls = %#v", intro.calls)
	}
}

func TestDescribePropagatesStoreErrors(t *testing.T) {
	cause := errors.New("connection refused")
	intro := &fakeIntrospector{listErr: cause}

	_, err := Describe(context.Background(), intro, 3)
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	schema := Schema{Tables: []Table{
		{
			Name:       "products",
			Columns:    []store.ColumnInfo{{Name: "id", Type: "bigint"}, {Name: "title", Type: "text"}},
			SampleRows: []store.Row{{"title": "Steel Shelf", "id": int64(1)}},
		},
	}}

	first := schema.Render()
	second := schema.Render()
	if first != second {
		t.Fatal("Render() is not deterministic")
	}
	if !strings.Contains(first, "Table: products") {
		t.Fatalf("Render() = %q, missing table header", first)
	}
	if !strings.Contains(first, "id (bigint), title (text)") {
		t.Fatalf("Render() = %q, missing column listing", first)
	}
	if !strings.Contains(first, `"title":"Steel Shelf"`) {
		t.Fatalf("Render() = %q, missing sample row", first)
	}
}
