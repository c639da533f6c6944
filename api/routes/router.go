package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/narkk-storefront/api/controllers"
	"github.com/angelmondragon/narkk-storefront/api/middleware"
	"github.com/angelmondragon/narkk-storefront/internal/cart"
	"github.com/angelmondragon/narkk-storefront/internal/catalog"
	"github.com/angelmondragon/narkk-storefront/internal/checkout"
	"github.com/angelmondragon/narkk-storefront/internal/session"
	"github.com/angelmondragon/narkk-storefront/internal/settings"
	"github.com/angelmondragon/narkk-storefront/pkg/config"
	"github.com/angelmondragon/narkk-storefront/pkg/db"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
)

// Dependencies groups what the HTTP surface needs. SlotBackend backs the
// readiness probe; Gatherer backs /metrics and may be nil.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	SlotBackend db.Pinger
	Gatherer    prometheus.Gatherer
	Sessions    *session.Codec
	Catalog     catalog.Catalog
	Carts       cart.Service
	Checkout    checkout.Service
	Settings    settings.Service
}

func NewRouter(d Dependencies) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.SlotBackend, logg))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(d.Sessions, logg))

		r.Get("/categories", controllers.ListCategories(d.Catalog, logg))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(d.Catalog, logg))
			r.Get("/featured", controllers.ListFeaturedProducts(d.Catalog, logg))
			r.Get("/{slug}", controllers.GetProduct(d.Catalog, logg))
			r.Get("/{slug}/related", controllers.ListRelatedProducts(d.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Carts, logg))
			r.Delete("/", controllers.CartClear(d.Carts, logg))
			r.Post("/items", controllers.CartAddItem(d.Carts, d.Catalog, logg))
			r.Patch("/items/{id}", controllers.CartUpdateItem(d.Carts, logg))
			r.Delete("/items/{id}", controllers.CartRemoveItem(d.Carts, logg))
		})

		r.Post("/checkout", controllers.PlaceOrder(d.Checkout, logg))
		r.Get("/orders/last", controllers.LastOrder(d.Checkout, logg))

		r.Route("/settings/commerce", func(r chi.Router) {
			r.Get("/", controllers.GetCommerceSettings(d.Settings, logg))
			r.Put("/", controllers.SaveCommerceSettings(d.Settings, logg))
			r.Delete("/", controllers.ClearCommerceSettings(d.Settings, logg))
		})
	})

	return r
}
