package checkout

import (
	"github.com/angelmondragon/narkk-storefront/internal/cart"
	"github.com/shopspring/decimal"
)

// Customer is the checkout form. Every field is required.
type Customer struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

// Order is the snapshot kept in the narkk-last-order slot for the
// confirmation page. Each checkout overwrites the previous one.
type Order struct {
	ID       string          `json:"id"`
	Items    []cart.Item     `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Customer Customer        `json:"customer"`
}
