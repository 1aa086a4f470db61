package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey identifies one of the supported product list orderings.
type SortKey string

const (
	SortDefault      SortKey = "default"
	SortPriceLowHigh SortKey = "price-low-high"
	SortPriceHighLow SortKey = "price-high-low"
	SortNameAToZ     SortKey = "name-a-z"
	SortNameZToA     SortKey = "name-z-a"
)

// ParseSortKey maps a query value onto a sort key, falling back to the
// default ordering for unknown values.
func ParseSortKey(value string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(value))) {
	case SortPriceLowHigh:
		return SortPriceLowHigh
	case SortPriceHighLow:
		return SortPriceHighLow
	case SortNameAToZ:
		return SortNameAToZ
	case SortNameZToA:
		return SortNameZToA
	default:
		return SortDefault
	}
}

// PriceRange is an inclusive minor-unit price filter. A nil bound is open.
type PriceRange struct {
	Min *int64
	Max *int64
}

// Contains reports whether the price satisfies both bounds.
func (r PriceRange) Contains(price int64) bool {
	if r.Min != nil && price < *r.Min {
		return false
	}
	if r.Max != nil && price > *r.Max {
		return false
	}
	return true
}

// BrowseQuery is the transient filter/sort projection applied to a fetched
// product list. It holds no state between requests.
type BrowseQuery struct {
	Price PriceRange
	Sort  SortKey
}

// ApplyBrowseQuery filters and orders the product list. The input slice is
// never mutated; the result is re-derived on every call.
func ApplyBrowseQuery(products []Product, query BrowseQuery) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if query.Price.Contains(p.Price) {
			result = append(result, p)
		}
	}

	switch query.Sort {
	case SortPriceLowHigh:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case SortPriceHighLow:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	case SortNameAToZ:
		sortByTitle(result, false)
	case SortNameZToA:
		sortByTitle(result, true)
	default:
		sort.SliceStable(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	}
	return result
}

func sortByTitle(products []Product, descending bool) {
	collator := collate.New(language.English, collate.Loose)
	sort.SliceStable(products, func(i, j int) bool {
		cmp := collator.CompareString(products[i].Title, products[j].Title)
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}
