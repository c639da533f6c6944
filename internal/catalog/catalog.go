package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// AllCategory is the pseudo-category that matches every product.
const AllCategory = "all"

// RelatedLimit caps ListRelatedProducts.
const RelatedLimit = 3

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"shortDescription"`
	Price            decimal.Decimal     `json:"price"`
	Images           []string            `json:"images"`
	Featured         bool                `json:"featured"`
	Categories       []Category          `json:"categories"`
	Options          map[string][]string `json:"options,omitempty"`
}

// InCategory reports whether the product is tagged with the category slug.
func (p Product) InCategory(slug string) bool {
	for _, c := range p.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

// SharesCategory reports whether p and other have a category id in common.
func (p Product) SharesCategory(other Product) bool {
	for _, a := range p.Categories {
		for _, b := range other.Categories {
			if a.ID == b.ID {
				return true
			}
		}
	}
	return false
}

// PrimaryImage returns the first image or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Catalog is the read-only product source. Implementations never fail on
// missing data: an unknown slug is reported through the bool of GetProduct,
// and remote failures degrade to empty results. Returned errors are limited
// to a cancelled context.
type Catalog interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListFeaturedProducts(ctx context.Context) ([]Product, error)
	ListProductsByCategory(ctx context.Context, slug string) ([]Product, error)
	GetProduct(ctx context.Context, slug string) (Product, bool, error)
	ListRelatedProducts(ctx context.Context, slug string) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
