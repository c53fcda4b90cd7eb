package jsonstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopchat/shopchat/internal/store"
)

const testData = `{
  "products": [
    {"id": 1, "catId": 1, "title": "Steel Shelf", "price": 129.99, "description": "A sturdy shelf for the garage.", "stock": 12},
    {"id": 2, "catId": 1, "title": "Plastic Bin", "price": 9.5, "description": "Stackable storage bin.", "stock": 80},
    {"id": 3, "catId": 2, "title": "Oak Desk", "price": 349, "description": "Solid oak writing desk.", "stock": 3}
  ],
  "categories": [
    {"id": 1, "title": "Storage"},
    {"id": 2, "title": "Desks"}
  ]
}`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(testData), 0o600); err != nil {
		t.Fatalf("write test data: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestListProductsFilters(t *testing.T) {
	s := newTestStore(t)
	categoryID := int64(1)

	cases := []struct {
		name   string
		filter store.ProductFilter
		want   int
	}{
		{"no filter", store.ProductFilter{}, 3},
		{"search title", store.ProductFilter{Search: "shelf"}, 1},
		{"search description", store.ProductFilter{Search: "stackable"}, 1},
		{"category", store.ProductFilter{CategoryID: &categoryID}, 2},
		{"search and category", store.ProductFilter{Search: "bin", CategoryID: &categoryID}, 1},
		{"no match", store.ProductFilter{Search: "chair"}, 0},
	}
	for _, tc := range cases {
		products, err := s.ListProducts(context.Background(), tc.filter)
		if err != nil {
			t.Fatalf("%s: ListProducts() error = %v", tc.name, err)
		}
		if len(products) != tc.want {
			t.Fatalf("%s: len(products) = %d, want %d", tc.name, len(products), tc.want)
		}
	}
}

func TestGetProduct(t *testing.T) {
	s := newTestStore(t)

	product, err := s.GetProduct(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if product.Title != "Oak Desk" {
		t.Fatalf("Title = %q", product.Title)
	}

	_, err = s.GetProduct(context.Background(), 99)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want store.ErrNotFound", err)
	}
}

func TestCategories(t *testing.T) {
	s := newTestStore(t)

	categories, err := s.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("len(categories) = %d", len(categories))
	}

	category, err := s.GetCategory(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetCategory() error = %v", err)
	}
	if category.Title != "Desks" {
		t.Fatalf("Title = %q", category.Title)
	}

	_, err = s.GetCategory(context.Background(), 99)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want store.ErrNotFound", err)
	}
}
