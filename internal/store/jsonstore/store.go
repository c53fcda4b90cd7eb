// Package jsonstore serves the storefront catalog from a static db.json
// file, for demo deployments with no database. It is read-only and has no
// SQL surface, so the chat pipeline stays disabled when it is in use.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopchat/shopchat/internal/store"
)

type Store struct {
	products   []store.Product
	categories []store.Category
}

type dataFile struct {
	Products   []store.Product  `json:"products"`
	Categories []store.Category `json:"categories"`
}

func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read static data: %w", err)
	}
	var data dataFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse static data: %w", err)
	}
	return &Store{products: data.Products, categories: data.Categories}, nil
}

func (s *Store) ListProducts(_ context.Context, filter store.ProductFilter) ([]store.Product, error) {
	var result []store.Product
	search := strings.ToLower(filter.Search)
	for _, product := range s.products {
		if search != "" {
			title := strings.ToLower(product.Title)
			description := strings.ToLower(product.Description)
			if !strings.Contains(title, search) && !strings.Contains(description, search) {
				continue
			}
		}
		if filter.CategoryID != nil {
			if product.CategoryID == nil || *product.CategoryID != *filter.CategoryID {
				continue
			}
		}
		result = append(result, product)
	}
	return result, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (store.Product, error) {
	for _, product := range s.products {
		if product.ID == id {
			return product, nil
		}
	}
	return store.Product{}, store.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context) ([]store.Category, error) {
	return append([]store.Category(nil), s.categories...), nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (store.Category, error) {
	for _, category := range s.categories {
		if category.ID == id {
			return category, nil
		}
	}
	return store.Category{}, store.ErrNotFound
}
