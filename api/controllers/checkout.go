package controllers

import (
	"net/http"

	"github.com/angelmondragon/narkk-storefront/api/responses"
	"github.com/angelmondragon/narkk-storefront/api/validators"
	"github.com/angelmondragon/narkk-storefront/internal/checkout"
	"github.com/angelmondragon/narkk-storefront/internal/session"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
)

// PlaceOrder submits the checkout form. Field validation happens in the
// service after trimming, so the body is decoded without struct checks.
func PlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var customer checkout.Customer
		if err := validators.DecodeJSONBodyLoose(r, &customer); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), session.IDFromContext(r.Context()), customer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func LastOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.LastOrder(r.Context(), session.IDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
