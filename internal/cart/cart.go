package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one cart line. Lines are identified by ID alone.
type Item struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Price    decimal.Decimal   `json:"price"`
	Image    string            `json:"image"`
	Quantity int               `json:"quantity"`
	Options  map[string]string `json:"options,omitempty"`
}

// LineTotal returns price × quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the persisted shape of the narkk-cart slot.
type Cart struct {
	Items []Item `json:"items"`
}

// Subtotal sums every line. It is never stored.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count is the total number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c Cart) indexOf(id int64) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	items := make([]Item, len(c.Items))
	for i, item := range c.Items {
		items[i] = item.clone()
	}
	return Cart{Items: items}
}

func (i Item) clone() Item {
	if i.Options == nil {
		return i
	}
	opts := make(map[string]string, len(i.Options))
	for k, v := range i.Options {
		opts[k] = v
	}
	i.Options = opts
	return i
}
