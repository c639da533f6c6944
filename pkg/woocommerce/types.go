package woocommerce

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64
	Name        string
	Slug        string
	Description string
}

type Product struct {
	ID               int64
	Name             string
	Slug             string
	Description      string
	ShortDescription string
	Price            decimal.Decimal
	Images           []string
	Featured         bool
	Categories       []Category
	Options          map[string][]string
}

type categoryPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (c categoryPayload) toCategory() Category {
	return Category{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
}

type productPayload struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	Price            string `json:"price"`
	Featured         bool   `json:"featured"`
	Images           []struct {
		Src string `json:"src"`
	} `json:"images"`
	Categories []categoryPayload `json:"categories"`
	Attributes []struct {
		Name    string   `json:"name"`
		Options []string `json:"options"`
	} `json:"attributes"`
}

func (p productPayload) toProduct() Product {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.Src)
	}
	categories := make([]Category, 0, len(p.Categories))
	for _, cat := range p.Categories {
		categories = append(categories, Category{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
	}
	options := make(map[string][]string, len(p.Attributes))
	for _, attr := range p.Attributes {
		options[attr.Name] = attr.Options
	}
	return Product{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            parsePrice(p.Price),
		Images:           images,
		Featured:         p.Featured,
		Categories:       categories,
		Options:          options,
	}
}

// parsePrice reads WooCommerce's string price. Blank or malformed prices read as zero.
func parsePrice(raw string) decimal.Decimal {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return price
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	PaymentMethod      string     `json:"payment_method"`
	PaymentMethodTitle string     `json:"payment_method_title"`
	SetPaid            bool       `json:"set_paid"`
	Billing            Address    `json:"billing"`
	Shipping           Address    `json:"shipping"`
	LineItems          []LineItem `json:"line_items"`
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
