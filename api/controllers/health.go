package controllers

import (
	"net/http"

	"github.com/angelmondragon/narkk-storefront/api/responses"
	"github.com/angelmondragon/narkk-storefront/pkg/config"
	"github.com/angelmondragon/narkk-storefront/pkg/db"
	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Narkk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the slot backend answers a ping.
func HealthReady(cfg *config.Config, slotBackend db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Narkk-Env", cfg.App.Env)
		if slotBackend != nil {
			if err := slotBackend.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage backend unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "storage": cfg.Storage.Backend})
	}
}
