package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Row is a single result row keyed by column name, in SELECT-list order as
// far as the map allows. Values are whatever the driver produced.
type Row map[string]any

type Product struct {
	ID          int64    `json:"id"`
	CategoryID  *int64   `json:"catId,omitempty"`
	Title       string   `json:"title"`
	ProductCode string   `json:"productCode,omitempty"`
	Image       string   `json:"image,omitempty"`
	Price       float64  `json:"price"`
	SKU         string   `json:"sku,omitempty"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
	Stock       int      `json:"stock"`
}

type Category struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type ProductFilter struct {
	// Search matches title or description, case-insensitively.
	Search string
	// CategoryID narrows to a single category when non-nil.
	CategoryID *int64
}

// Catalog is the read surface the storefront endpoints need. Both the
// postgres repository and the static JSON store implement it.
type Catalog interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
}

// ColumnInfo describes one column of an introspected table.
type ColumnInfo struct {
	Name string
	Type string
}

// Introspector exposes the metadata reads the chat pipeline grounds its
// prompts on. Implemented by the postgres repository only; the JSON store
// has no SQL surface.
type Introspector interface {
	ListTableNames(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]ColumnInfo, error)
	SampleRows(ctx context.Context, table string, limit int) ([]Row, error)
}

// Querier runs a single read statement and returns its rows. The statement
// text comes from the sanitizer; no further validation happens here.
type Querier interface {
	QueryRows(ctx context.Context, sqlText string) ([]Row, error)
}
