package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/narkk-storefront/api/responses"
	"github.com/angelmondragon/narkk-storefront/api/validators"
	"github.com/angelmondragon/narkk-storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
)

func ListCategories(cat catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := cat.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, emptyIfNil(categories))
	}
}

// ListProducts serves the shop grid: an optional category filter followed by
// an optional sort order.
func ListProducts(cat catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, ok := catalog.ParseSortOrder(validators.QueryString(r, "sort", string(catalog.SortDefault)))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort order").
				WithDetails(map[string]any{"field": "sort"}))
			return
		}

		products, err := cat.ListProductsByCategory(r.Context(), validators.QueryString(r, "category", catalog.AllCategory))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, emptyIfNil(catalog.Sort(products, order)))
	}
}

func ListFeaturedProducts(cat catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := cat.ListFeaturedProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, emptyIfNil(products))
	}
}

func GetProduct(cat catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, found, err := cat.GetProduct(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ListRelatedProducts(cat catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := cat.ListRelatedProducts(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, emptyIfNil(products))
	}
}

func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
