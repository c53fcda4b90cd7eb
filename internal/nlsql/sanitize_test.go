package nlsql

import (
	"errors"
	"testing"
)

func TestSanitizeExtractsStatements(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain statement",
			raw:  "SELECT title FROM products",
			want: "SELECT title FROM products",
		},
		{
			name: "fenced with language tag",
			raw:  "```sql\nSELECT title, price FROM products LIMIT 5;\n```",
			want: "SELECT title, price FROM products LIMIT 5",
		},
		{
			name: "fenced without language tag",
			raw:  "```\nSELECT count(*) FROM products\n```",
			want: "SELECT count(*) FROM products",
		},
		{
			name: "leading explanatory prose",
			raw:  "Sure! Here is your query:\nSELECT title FROM products WHERE stock > 0;",
			want: "SELECT title FROM products WHERE stock > 0",
		},
		{
			name: "trailing explanatory prose after terminator",
			raw:  "SELECT id FROM categories; This lists every category id.",
			want: "SELECT id FROM categories",
		},
		{
			name: "multiple statements keeps first",
			raw:  "SELECT id FROM products; SELECT id FROM categories;",
			want: "SELECT id FROM products",
		},
		{
			name: "lowercase verb",
			raw:  "select title from products limit 5",
			want: "select title from products limit 5",
		},
		{
			name: "surrounding whitespace",
			raw:  "   \n SELECT 1 \n  ",
			want: "SELECT 1",
		},
		{
			name: "multiline statement without terminator",
			raw:  "SELECT title,\n  price\nFROM products\nORDER BY price DESC\nLIMIT 1",
			want: "SELECT title,\n  price\nFROM products\nORDER BY price DESC\nLIMIT 1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Sanitize(tc.raw, false)
			if err != nil {
				t.Fatalf("Sanitize() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Sanitize() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSanitizeRejectsUnsafeOutput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\t "},
		{"fences only", "```sql\n```"},
		{"drop statement", "DROP TABLE products;"},
		{"delete under read-only profile", "DELETE FROM products WHERE id = 1;"},
		{"update under read-only profile", "UPDATE products SET price = 0;"},
		{"prose without sql", "I cannot answer that question."},
		{"verb embedded in word", "Use SELECTION criteria wisely."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Sanitize(tc.raw, false)
			if !errors.Is(err, ErrUnsafeQuery) {
				t.Fatalf("Sanitize() error = %v, want ErrUnsafeQuery", err)
			}
		})
	}
}

func TestSanitizeAllowsWritesOnlyWhenEnabled(t *testing.T) {
	raw := "UPDATE products SET stock = stock - 1 WHERE id = 3;"

	got, err := Sanitize(raw, true)
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	if got != "UPDATE products SET stock = stock - 1 WHERE id = 3" {
		t.Fatalf("Sanitize() = %q", got)
	}

	if _, err := Sanitize(raw, false); !errors.Is(err, ErrUnsafeQuery) {
		t.Fatalf("Sanitize() error = %v, want ErrUnsafeQuery", err)
	}
}

func TestSanitizeStripsSingleTrailingTerminatorOnly(t *testing.T) {
	got, err := Sanitize("SELECT 1;;", false)
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	if got != "SELECT 1" {
		t.Fatalf("Sanitize() = %q", got)
	}
}
