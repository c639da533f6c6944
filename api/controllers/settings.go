package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/narkk-storefront/api/responses"
	"github.com/angelmondragon/narkk-storefront/api/validators"
	"github.com/angelmondragon/narkk-storefront/internal/session"
	"github.com/angelmondragon/narkk-storefront/internal/settings"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
)

type commerceSettingsResponse struct {
	APIURL         string `json:"apiUrl"`
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`
	Configured     bool   `json:"configured"`
	Source         string `json:"source"`
	Notice         string `json:"notice,omitempty"`
}

func newCommerceSettingsResponse(view settings.View, notice string) commerceSettingsResponse {
	return commerceSettingsResponse{
		APIURL:         view.Saved.APIURL,
		ConsumerKey:    view.Saved.ConsumerKey,
		ConsumerSecret: maskSecret(view.Saved.ConsumerSecret),
		Configured:     view.Configured,
		Source:         view.Source,
		Notice:         notice,
	}
}

func GetCommerceSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), session.IDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCommerceSettingsResponse(view, ""))
	}
}

// SaveCommerceSettings stores the session's WooCommerce credentials. The
// service trims and validates, so the body is decoded loosely.
func SaveCommerceSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload settings.Commerce
		if err := validators.DecodeJSONBodyLoose(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Save(r.Context(), session.IDFromContext(r.Context()), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCommerceSettingsResponse(view, settings.NoticeSaved))
	}
}

func ClearCommerceSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.IDFromContext(r.Context())
		if err := svc.Clear(r.Context(), sess); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCommerceSettingsResponse(view, settings.NoticeCleared))
	}
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
