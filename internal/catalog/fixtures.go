package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

var (
	categoryAll   = Category{ID: 1, Name: "All", Slug: AllCategory}
	categoryLive  = Category{ID: 2, Name: "Live", Slug: "live", Description: "Living room furniture"}
	categoryStudy = Category{ID: 3, Name: "Study", Slug: "study", Description: "Office and study room furniture"}
	categoryDine  = Category{ID: 4, Name: "Dine", Slug: "dine", Description: "Dining room furniture"}
)

func fixtureCategories() []Category {
	return []Category{categoryAll, categoryLive, categoryStudy, categoryDine}
}

func sofaOptions(configurations ...string) map[string][]string {
	return map[string][]string{
		"Configuration": configurations,
		"Wood":          {"Teak", "Walnut", "Oak"},
		"Color":         {"Grey", "Beige", "Blue"},
	}
}

func fixtureProducts() []Product {
	return []Product{
		{
			ID:               1,
			Name:             "Yappani Bar Chair",
			Slug:             "yappani-bar-chair",
			Description:      "While the name may not reflect its origins, our chairs embody the essence of Japanese design principles. It is thoughtfully crafted to be precisely what a chair should be: sleek, uncluttered, and purposeful. Embrace the beauty of simplicity and experience furniture that effortlessly fulfills its intended purpose. Same as the chair but taller!",
			ShortDescription: "Sleek bar chair with minimalist design",
			Price:            decimal.NewFromInt(7000),
			Images: []string{
				"https://images.unsplash.com/photo-1517142089942-ba376ce32a2e?q=80&w=2940&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1598300042247-d088f8ab3a91?w=800&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1503602642458-232111445657?w=800&auto=format&fit=crop",
			},
			Featured:   true,
			Categories: []Category{categoryLive},
		},
		{
			ID:               2,
			Name:             "Sherthal",
			Slug:             "sherthal",
			Description:      "Modular modern sofa, built of solid wooden base and soft upholstery. Assorted cushions come like the sun into an otherwise simple figure, adding complements to design.",
			ShortDescription: "Modular lounge sofa element",
			Price:            decimal.NewFromInt(15200),
			Images: []string{
				"https://images.unsplash.com/photo-1555041469-a586c61ea9bc?q=80&w=2940&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1493663284031-b7e3aefcae8e?w=800&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1581539250439-c96689b516dd?w=800&auto=format&fit=crop",
			},
			Featured:   true,
			Categories: []Category{categoryLive},
			Options:    sofaOptions("Center", "Corner", "Armrest"),
		},
		{
			ID:               3,
			Name:             "Sukkopa",
			Slug:             "sukkopa",
			Description:      "The ideal sectional sofa for modern living spaces. With its timeless design and superior comfort, the Sukkopa sectional adapts to your lifestyle with modular flexibility.",
			ShortDescription: "Sectional sofa with modular design",
			Price:            decimal.NewFromInt(25000),
			Images: []string{
				"https://images.unsplash.com/photo-1540574163026-643ea20ade25?w=800&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1550254478-ead40cc3f1f3?w=800&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1491926626787-62db157af940?w=800&auto=format&fit=crop",
			},
			Featured:   true,
			Categories: []Category{categoryLive},
			Options:    sofaOptions("2-Seater", "3-Seater", "L-Shape"),
		},
		{
			ID:               4,
			Name:             "Danish Woos",
			Slug:             "danish-woos",
			Description:      "Inspired by mid-century Danish design, this corner sofa combines elegance with functionality. Perfect for family gatherings or quiet evenings.",
			ShortDescription: "Corner sofa with Danish design influence",
			Price:            decimal.NewFromInt(45000),
			Images: []string{
				"https://images.unsplash.com/photo-1578500494198-246f612d3b3d?w=800&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1519947486511-46149fa0a254?w=800&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1567538096630-e0c55bd6374c?w=800&auto=format&fit=crop",
			},
			Categories: []Category{categoryLive},
		},
		{
			ID:               5,
			Name:             "Yappani Chair",
			Slug:             "yappani-chair",
			Description:      "A lightweight, comfortable dining chair that embodies the essence of minimalist design. Perfect for any modern dining space.",
			ShortDescription: "Minimalist wooden dining chair",
			Price:            decimal.NewFromInt(4500),
			Images: []string{
				"https://images.unsplash.com/photo-1561677978-583a8c7a4b43?w=800&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1503602642458-232111445657?w=800&auto=format&fit=crop",
				"https://images.unsplash.com/photo-1551298370-9d3d53740c72?w=800&auto=format&fit=crop",
			},
			Categories: []Category{categoryDine},
		},
	}
}

// FixtureCatalog serves the built-in demo catalog.
type FixtureCatalog struct {
	products   []Product
	categories []Category
}

func NewFixtureCatalog() *FixtureCatalog {
	return &FixtureCatalog{products: fixtureProducts(), categories: fixtureCategories()}
}

func (f *FixtureCatalog) ListProducts(context.Context) ([]Product, error) {
	return f.filter(func(Product) bool { return true }), nil
}

func (f *FixtureCatalog) ListFeaturedProducts(context.Context) ([]Product, error) {
	return f.filter(func(p Product) bool { return p.Featured }), nil
}

func (f *FixtureCatalog) ListProductsByCategory(ctx context.Context, slug string) ([]Product, error) {
	if slug == AllCategory {
		return f.ListProducts(ctx)
	}
	return f.filter(func(p Product) bool { return p.InCategory(slug) }), nil
}

func (f *FixtureCatalog) GetProduct(_ context.Context, slug string) (Product, bool, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return cloneProduct(p), true, nil
		}
	}
	return Product{}, false, nil
}

func (f *FixtureCatalog) ListRelatedProducts(ctx context.Context, slug string) ([]Product, error) {
	current, ok, _ := f.GetProduct(ctx, slug)
	if !ok {
		return []Product{}, nil
	}
	related := f.filter(func(p Product) bool {
		return p.ID != current.ID && p.SharesCategory(current)
	})
	if len(related) > RelatedLimit {
		related = related[:RelatedLimit]
	}
	return related, nil
}

func (f *FixtureCatalog) ListCategories(context.Context) ([]Category, error) {
	return append([]Category(nil), f.categories...), nil
}

func (f *FixtureCatalog) filter(keep func(Product) bool) []Product {
	out := []Product{}
	for _, p := range f.products {
		if keep(p) {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

func cloneProduct(p Product) Product {
	p.Images = append([]string(nil), p.Images...)
	p.Categories = append([]Category(nil), p.Categories...)
	if p.Options != nil {
		opts := make(map[string][]string, len(p.Options))
		for k, v := range p.Options {
			opts[k] = append([]string(nil), v...)
		}
		p.Options = opts
	}
	return p
}
