package models

import (
	"sort"
	"strings"
)

// ProductSort selects the ordering of a catalog query.
type ProductSort string

const (
	SortNone       ProductSort = ""
	SortPriceAsc   ProductSort = "priceAsc"
	SortPriceDesc  ProductSort = "priceDesc"
	SortPopularity ProductSort = "popularity"
)

// ParseProductSort maps the sortBy query value; unrecognized values mean unsorted.
func ParseProductSort(s string) ProductSort {
	switch ProductSort(s) {
	case SortPriceAsc, SortPriceDesc, SortPopularity:
		return ProductSort(s)
	default:
		return SortNone
	}
}

// ProductFilter is a conjunction of optional predicates over the catalog.
// Zero values impose no constraint.
type ProductFilter struct {
	Collection string
	Category   string
	Materials  []string
	Brands     []string
	Sizes      []string
	Color      string
	Gender     string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	SortBy     ProductSort
	Limit      int
}

// HasListPredicates reports whether the filter tests membership in the
// product's own size or color lists.
func (f ProductFilter) HasListPredicates() bool {
	return len(f.Sizes) > 0 || f.Color != ""
}

// Matches evaluates every predicate of the filter against p.
func (f ProductFilter) Matches(p *Product) bool {
	if f.Collection != "" && p.Collections != f.Collection {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if len(f.Materials) > 0 && !contains(f.Materials, p.Material) {
		return false
	}
	if len(f.Brands) > 0 && !contains(f.Brands, p.Brand) {
		return false
	}
	if len(f.Sizes) > 0 && !intersects(f.Sizes, p.Sizes) {
		return false
	}
	if f.Color != "" && !contains(p.Colors, f.Color) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

// SortProducts orders products in place. SortNone keeps the input order.
func SortProducts(products []Product, by ProductSort) {
	switch by {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortPopularity:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	}
}

// SplitList turns a comma separated query value into its non-empty parts.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if contains(b, v) {
			return true
		}
	}
	return false
}
