package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopchat/shopchat/internal/store"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, filter store.ProductFilter) ([]store.Product, error) {
	query := `
SELECT id, category_id, title, product_code, image, price, sku, description, stock
FROM products`
	var (
		clauses []string
		args    []any
	)
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		placeholder := "$" + strconv.Itoa(len(args))
		clauses = append(clauses, "(LOWER(title) LIKE "+placeholder+" OR LOWER(description) LIKE "+placeholder+")")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, "category_id = $"+strconv.Itoa(len(args)))
	}
	if len(clauses) > 0 {
		query += "\nWHERE " + strings.Join(clauses, " AND ")
	}
	query += "\nORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []store.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (store.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, category_id, title, product_code, image, price, sku, description, stock
FROM products
WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Product{}, store.ErrNotFound
		}
		return store.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]store.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, slug, description, image
FROM categories
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []store.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (store.Category, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, slug, description, image
FROM categories
WHERE id = $1`, id)

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Category{}, store.ErrNotFound
		}
		return store.Category{}, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (store.Product, error) {
	var (
		product     store.Product
		categoryID  sql.NullInt64
		productCode sql.NullString
		image       sql.NullString
		sku         sql.NullString
		description sql.NullString
	)
	if err := row.Scan(
		&product.ID,
		&categoryID,
		&product.Title,
		&productCode,
		&image,
		&product.Price,
		&sku,
		&description,
		&product.Stock,
	); err != nil {
		return store.Product{}, err
	}
	if categoryID.Valid {
		product.CategoryID = &categoryID.Int64
	}
	product.ProductCode = productCode.String
	product.Image = image.String
	product.SKU = sku.String
	product.Description = description.String
	return product, nil
}

func scanCategory(row rowScanner) (store.Category, error) {
	var (
		category    store.Category
		slug        sql.NullString
		description sql.NullString
		image       sql.NullString
	)
	if err := row.Scan(
		&category.ID,
		&category.Title,
		&slug,
		&description,
		&image,
	); err != nil {
		return store.Category{}, err
	}
	category.Slug = slug.String
	category.Description = description.String
	category.Image = image.String
	return category, nil
}
