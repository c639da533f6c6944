package controllers

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/narkk-storefront/api/responses"
	"github.com/angelmondragon/narkk-storefront/api/validators"
	"github.com/angelmondragon/narkk-storefront/internal/cart"
	"github.com/angelmondragon/narkk-storefront/internal/catalog"
	"github.com/angelmondragon/narkk-storefront/internal/session"
	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
)

type addCartItemRequest struct {
	Slug     string            `json:"slug" validate:"required"`
	Quantity int               `json:"quantity"`
	Options  map[string]string `json:"options,omitempty"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity,omitempty"`
	Delta    *int `json:"delta,omitempty"`
}

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), session.IDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem adds a catalog product to the session's cart. Options the
// shopper left unselected default to the first allowed value.
func CartAddItem(svc cart.Service, cat catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, found, err := cat.GetProduct(r.Context(), payload.Slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))
			return
		}

		options, err := resolveOptions(product, payload.Options)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item := cart.Item{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			Image:    product.PrimaryImage(),
			Quantity: max(1, payload.Quantity),
			Options:  options,
		}
		result, err := svc.Add(r.Context(), session.IDFromContext(r.Context()), item)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartUpdateItem accepts either an absolute quantity (clamped to 1) or a
// relative delta.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if (payload.Quantity == nil) == (payload.Delta == nil) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "provide exactly one of quantity or delta"))
			return
		}

		sess := session.IDFromContext(r.Context())
		var result cart.Result
		if payload.Quantity != nil {
			result, err = svc.SetQuantity(r.Context(), sess, id, max(1, *payload.Quantity))
		} else {
			result, err = svc.AdjustQuantity(r.Context(), sess, id, *payload.Delta)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Remove(r.Context(), session.IDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Clear(r.Context(), session.IDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func resolveOptions(product catalog.Product, selected map[string]string) (map[string]string, error) {
	invalid := map[string]string{}
	for name, value := range selected {
		allowed, ok := product.Options[name]
		if !ok {
			invalid[name] = "is not an option of this product"
			continue
		}
		if !slices.Contains(allowed, value) {
			invalid[name] = "is not an allowed value"
		}
	}
	if len(invalid) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product options").WithDetails(invalid)
	}
	if len(product.Options) == 0 {
		return nil, nil
	}

	resolved := make(map[string]string, len(product.Options))
	for name, allowed := range product.Options {
		if value, ok := selected[name]; ok {
			resolved[name] = value
			continue
		}
		if len(allowed) > 0 {
			resolved[name] = allowed[0]
		}
	}
	return resolved, nil
}
