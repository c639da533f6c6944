package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/angelmondragon/narkk-storefront/internal/session"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/angelmondragon/narkk-storefront/pkg/metrics"
	"github.com/angelmondragon/narkk-storefront/pkg/woocommerce"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	products   []woocommerce.Product
	categories []woocommerce.Category
	err        error
	queries    []woocommerce.ProductQuery
}

func (f *fakeSource) ListProducts(_ context.Context, q woocommerce.ProductQuery) ([]woocommerce.Product, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if q.Slug != "" {
		for _, p := range f.products {
			if p.Slug == q.Slug {
				return []woocommerce.Product{p}, nil
			}
		}
		return nil, nil
	}
	return f.products, nil
}

func (f *fakeSource) ListCategories(context.Context) ([]woocommerce.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func wooProduct(id int64, slug string, catIDs ...int64) woocommerce.Product {
	cats := []woocommerce.Category{}
	for _, c := range catIDs {
		cats = append(cats, woocommerce.Category{ID: c, Slug: "cat"})
	}
	return woocommerce.Product{ID: id, Name: slug, Slug: slug, Price: decimal.NewFromInt(id * 100), Categories: cats}
}

func TestRemoteCatalogDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	src := &fakeSource{err: errors.New("502 bad gateway")}
	c := NewRemoteCatalog(src, quietLogger(), metrics.NewStorefrontMetrics(reg))

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	cats, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)

	_, ok, err := c.GetProduct(ctx, "sherthal")
	require.NoError(t, err)
	assert.False(t, ok)

	related, err := c.ListRelatedProducts(ctx, "sherthal")
	require.NoError(t, err)
	assert.Empty(t, related)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var degraded float64
	for _, mf := range mfs {
		if mf.GetName() == "catalog_degraded_reads_total" {
			for _, m := range mf.GetMetric() {
				degraded += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(4), degraded)
}

func TestRemoteCatalogPassesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewRemoteCatalog(&fakeSource{err: context.Canceled}, quietLogger(), nil)

	_, err := c.ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteCatalogQueries(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{products: []woocommerce.Product{wooProduct(7, "oak-bench", 2, 5)}}
	c := NewRemoteCatalog(src, quietLogger(), nil)

	_, _ = c.ListFeaturedProducts(ctx)
	_, _ = c.ListProductsByCategory(ctx, "live")
	_, _ = c.ListProductsByCategory(ctx, AllCategory)

	require.Len(t, src.queries, 3)
	assert.True(t, src.queries[0].Featured)
	assert.Equal(t, "live", src.queries[1].Category)
	assert.Equal(t, woocommerce.ProductQuery{}, src.queries[2])
}

func TestRemoteCatalogRelatedExcludesSelfAndCaps(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{products: []woocommerce.Product{
		wooProduct(7, "oak-bench", 2, 5),
		wooProduct(8, "ash-bench", 2),
		wooProduct(9, "elm-bench", 2),
		wooProduct(10, "fir-bench", 5),
		wooProduct(11, "yew-bench", 5),
	}}
	c := NewRemoteCatalog(src, quietLogger(), nil)

	related, err := c.ListRelatedProducts(ctx, "oak-bench")
	require.NoError(t, err)
	assert.Len(t, related, RelatedLimit)
	for _, p := range related {
		assert.NotEqual(t, int64(7), p.ID)
	}

	last := src.queries[len(src.queries)-1]
	assert.Equal(t, "2,5", last.Category)
	assert.Equal(t, []int64{7}, last.Exclude)
	assert.Equal(t, RelatedLimit, last.PerPage)
}

type staticCreds struct {
	creds   woocommerce.Credentials
	err     error
	session string
}

func (s *staticCreds) Credentials(_ context.Context, sess string) (woocommerce.Credentials, error) {
	s.session = sess
	return s.creds, s.err
}

func TestSelectorFallsBackToFixtures(t *testing.T) {
	ctx := session.WithID(context.Background(), "sess-1")
	creds := &staticCreds{}
	sel := NewSelector(nil, creds, nil, quietLogger(), nil)

	products, err := sel.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 5)
	assert.Equal(t, "sess-1", creds.session)

	creds.err = errors.New("slot backend down")
	products, err = sel.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 5)
}

func TestSelectorUsesRemoteWhenConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ck", r.URL.Query().Get("consumer_key"))
		_, _ = io.WriteString(w, `[{"id":99,"name":"Remote Sofa","slug":"remote-sofa","price":"10","images":[],"categories":[],"attributes":[]}]`)
	}))
	defer srv.Close()

	creds := &staticCreds{creds: woocommerce.Credentials{APIURL: srv.URL, ConsumerKey: "ck", ConsumerSecret: "cs"}}
	sel := NewSelector(nil, creds, srv.Client(), quietLogger(), nil)

	products, err := sel.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "remote-sofa", products[0].Slug)
}

func TestSelectorRefusesUntrustedPrivateEndpoint(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	creds := &staticCreds{creds: woocommerce.Credentials{APIURL: srv.URL + "/admin", ConsumerKey: "x", ConsumerSecret: "y", Untrusted: true}}
	sel := NewSelector(nil, creds, srv.Client(), quietLogger(), nil)

	products, err := sel.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 5, "the demo catalog is served instead")
	assert.Zero(t, hits.Load(), "no request may reach a session-supplied private address")
}
