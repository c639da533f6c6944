package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortOrder string

const (
	SortDefault        SortOrder = "default"
	SortPriceLowHigh   SortOrder = "price-low-high"
	SortPriceHighLow   SortOrder = "price-high-low"
	SortNameAscending  SortOrder = "name-a-z"
	SortNameDescending SortOrder = "name-z-a"
)

// ParseSortOrder accepts the shop's sort keys; blank means default.
func ParseSortOrder(raw string) (SortOrder, bool) {
	switch order := SortOrder(strings.TrimSpace(raw)); order {
	case "":
		return SortDefault, true
	case SortDefault, SortPriceLowHigh, SortPriceHighLow, SortNameAscending, SortNameDescending:
		return order, true
	default:
		return "", false
	}
}

// Sort returns a stably sorted copy. Names compare with locale-aware collation.
func Sort(products []Product, order SortOrder) []Product {
	out := slices.Clone(products)
	switch order {
	case SortPriceLowHigh:
		slices.SortStableFunc(out, func(a, b Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceHighLow:
		slices.SortStableFunc(out, func(a, b Product) int { return b.Price.Cmp(a.Price) })
	case SortNameAscending:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b Product) int { return c.CompareString(a.Name, b.Name) })
	case SortNameDescending:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b Product) int { return c.CompareString(b.Name, a.Name) })
	}
	return out
}
