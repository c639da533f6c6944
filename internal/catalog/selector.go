package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/angelmondragon/narkk-storefront/internal/session"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/angelmondragon/narkk-storefront/pkg/metrics"
	"github.com/angelmondragon/narkk-storefront/pkg/woocommerce"
)

// CredentialSource resolves the WooCommerce credentials in effect for a session.
type CredentialSource interface {
	Credentials(ctx context.Context, session string) (woocommerce.Credentials, error)
}

// Selector serves the remote catalog when the current session has complete
// credentials and the fixture catalog otherwise.
type Selector struct {
	fixture    Catalog
	creds      CredentialSource
	httpClient *http.Client
	logg       *logger.Logger
	metrics    *metrics.StorefrontMetrics
}

func NewSelector(fixture Catalog, creds CredentialSource, httpClient *http.Client, logg *logger.Logger, m *metrics.StorefrontMetrics) *Selector {
	if fixture == nil {
		fixture = NewFixtureCatalog()
	}
	return &Selector{fixture: fixture, creds: creds, httpClient: httpClient, logg: logg, metrics: m}
}

// For returns the catalog that serves the session carried by ctx.
func (s *Selector) For(ctx context.Context) Catalog {
	if s.creds == nil {
		return s.fixture
	}
	creds, err := s.creds.Credentials(ctx, session.IDFromContext(ctx))
	if err != nil {
		s.logg.Warn(ctx, "resolving commerce credentials failed, using demo catalog: "+err.Error())
		return s.fixture
	}
	client, err := woocommerce.NewClient(creds, woocommerce.WithHTTPClient(s.httpClient))
	if errors.Is(err, woocommerce.ErrPrivateEndpoint) {
		s.logg.Warn(s.logg.WithField(ctx, "api_url", creds.APIURL), "refusing non-public commerce endpoint, using demo catalog")
	}
	if err != nil {
		return s.fixture
	}
	return NewRemoteCatalog(client, s.logg, s.metrics)
}

func (s *Selector) ListProducts(ctx context.Context) ([]Product, error) {
	return s.For(ctx).ListProducts(ctx)
}

func (s *Selector) ListFeaturedProducts(ctx context.Context) ([]Product, error) {
	return s.For(ctx).ListFeaturedProducts(ctx)
}

func (s *Selector) ListProductsByCategory(ctx context.Context, slug string) ([]Product, error) {
	return s.For(ctx).ListProductsByCategory(ctx, slug)
}

func (s *Selector) GetProduct(ctx context.Context, slug string) (Product, bool, error) {
	return s.For(ctx).GetProduct(ctx, slug)
}

func (s *Selector) ListRelatedProducts(ctx context.Context, slug string) ([]Product, error) {
	return s.For(ctx).ListRelatedProducts(ctx, slug)
}

func (s *Selector) ListCategories(ctx context.Context) ([]Category, error) {
	return s.For(ctx).ListCategories(ctx)
}
