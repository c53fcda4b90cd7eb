package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shopchat/shopchat/internal/store"
)

// Catalog endpoints wrap their payloads in {"data": ...} and report
// failures as {"errorMessage": ...} so the storefront client can treat
// both shapes uniformly.

func handleListProducts(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Catalog == nil {
		writeCatalogError(w, http.StatusServiceUnavailable, "catalog is not configured")
		return
	}

	filter := store.ProductFilter{Search: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("catId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeCatalogError(w, http.StatusBadRequest, "catId must be an integer")
			return
		}
		filter.CategoryID = &id
	}

	products, err := deps.Catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeCatalogError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": products})
}

func handleGetProduct(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Catalog == nil {
		writeCatalogError(w, http.StatusServiceUnavailable, "catalog is not configured")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeCatalogError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	product, err := deps.Catalog.GetProduct(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeCatalogError(w, http.StatusNotFound, "product not found")
	case err != nil:
		writeCatalogError(w, http.StatusInternalServerError, "failed to load product")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"data": product})
	}
}

func handleListCategories(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Catalog == nil {
		writeCatalogError(w, http.StatusServiceUnavailable, "catalog is not configured")
		return
	}

	categories, err := deps.Catalog.ListCategories(r.Context())
	if err != nil {
		writeCatalogError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	if categories == nil {
		categories = []store.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": categories})
}

func handleGetCategory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Catalog == nil {
		writeCatalogError(w, http.StatusServiceUnavailable, "catalog is not configured")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeCatalogError(w, http.StatusBadRequest, "category id must be an integer")
		return
	}

	category, err := deps.Catalog.GetCategory(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeCatalogError(w, http.StatusNotFound, "category not found")
	case err != nil:
		writeCatalogError(w, http.StatusInternalServerError, "failed to load category")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"data": category})
	}
}

func writeCatalogError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"errorMessage": message})
}
