package catalog

import (
	"context"
	"time"

	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/angelmondragon/narkk-storefront/pkg/metrics"
	"github.com/angelmondragon/narkk-storefront/pkg/woocommerce"
)

// Operation labels used in logs and the degraded read counter.
const (
	opListProducts   = "list_products"
	opListFeatured   = "list_featured_products"
	opListByCategory = "list_products_by_category"
	opGetProduct     = "get_product"
	opListRelated    = "list_related_products"
	opListCategories = "list_categories"
)

type productSource interface {
	ListProducts(ctx context.Context, q woocommerce.ProductQuery) ([]woocommerce.Product, error)
	ListCategories(ctx context.Context) ([]woocommerce.Category, error)
}

// RemoteCatalog reads from WooCommerce. Failures are logged, counted and
// reported as empty results.
type RemoteCatalog struct {
	source  productSource
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

func NewRemoteCatalog(source productSource, logg *logger.Logger, m *metrics.StorefrontMetrics) *RemoteCatalog {
	return &RemoteCatalog{source: source, logg: logg, metrics: m}
}

func (r *RemoteCatalog) ListProducts(ctx context.Context) ([]Product, error) {
	return r.products(ctx, opListProducts, woocommerce.ProductQuery{})
}

func (r *RemoteCatalog) ListFeaturedProducts(ctx context.Context) ([]Product, error) {
	return r.products(ctx, opListFeatured, woocommerce.ProductQuery{Featured: true})
}

func (r *RemoteCatalog) ListProductsByCategory(ctx context.Context, slug string) ([]Product, error) {
	if slug == AllCategory {
		return r.ListProducts(ctx)
	}
	return r.products(ctx, opListByCategory, woocommerce.ProductQuery{Category: slug})
}

func (r *RemoteCatalog) GetProduct(ctx context.Context, slug string) (Product, bool, error) {
	found, err := r.products(ctx, opGetProduct, woocommerce.ProductQuery{Slug: slug})
	if err != nil || len(found) == 0 {
		return Product{}, false, err
	}
	return found[0], true, nil
}

func (r *RemoteCatalog) ListRelatedProducts(ctx context.Context, slug string) ([]Product, error) {
	current, ok, err := r.GetProduct(ctx, slug)
	if err != nil || !ok {
		return []Product{}, err
	}
	wcCats := make([]woocommerce.Category, len(current.Categories))
	for i, c := range current.Categories {
		wcCats[i] = woocommerce.Category{ID: c.ID}
	}

	found, err := r.products(ctx, opListRelated, woocommerce.ProductQuery{
		Category: woocommerce.JoinCategoryIDs(wcCats),
		Exclude:  []int64{current.ID},
		PerPage:  RelatedLimit,
	})
	if err != nil {
		return []Product{}, err
	}

	// the remote filter is trusted for membership but not for the bounds
	related := []Product{}
	for _, p := range found {
		if p.ID == current.ID {
			continue
		}
		related = append(related, p)
		if len(related) == RelatedLimit {
			break
		}
	}
	return related, nil
}

func (r *RemoteCatalog) ListCategories(ctx context.Context) ([]Category, error) {
	start := time.Now()
	found, err := r.source.ListCategories(ctx)
	r.metrics.ObserveCommerceRequest(opListCategories, time.Since(start))
	if err != nil {
		return []Category{}, r.degrade(ctx, opListCategories, err)
	}
	out := make([]Category, 0, len(found))
	for _, c := range found {
		out = append(out, fromWooCategory(c))
	}
	return out, nil
}

func (r *RemoteCatalog) products(ctx context.Context, op string, q woocommerce.ProductQuery) ([]Product, error) {
	start := time.Now()
	found, err := r.source.ListProducts(ctx, q)
	r.metrics.ObserveCommerceRequest(op, time.Since(start))
	if err != nil {
		return []Product{}, r.degrade(ctx, op, err)
	}
	out := make([]Product, 0, len(found))
	for _, p := range found {
		out = append(out, fromWooProduct(p))
	}
	return out, nil
}

// degrade logs and counts a failed read. Only a cancelled request context is
// passed back to the caller.
func (r *RemoteCatalog) degrade(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	r.metrics.IncDegradedRead(op)
	r.logg.Error(r.logg.WithField(ctx, "operation", op), "catalog read failed, serving empty result", err)
	return nil
}

func fromWooCategory(c woocommerce.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
}

func fromWooProduct(p woocommerce.Product) Product {
	categories := make([]Category, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, fromWooCategory(c))
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return Product{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		Images:           images,
		Featured:         p.Featured,
		Categories:       categories,
		Options:          p.Options,
	}
}
