package catalog

import (
	"sort"

	"github.com/senira34/lolipop-wear/internal/domain"
)

// DeriveFacets computes the filter options for a set of products in one pass.
//
// Subcategories and fits are sorted lexicographically, sizes follow
// domain.SizeOrder and colors keep the order they were first seen in.
// Sizes missing from the size table sort ahead of known ones.
func DeriveFacets(products []*domain.Product) *domain.Facets {
	facets := domain.EmptyFacets()

	seenSize := make(map[string]struct{})
	seenColor := make(map[string]struct{})
	seenFit := make(map[string]struct{})

	for _, p := range products {
		if p == nil {
			continue
		}

		if p.Subcategory != "" {
			if _, ok := facets.CategoryCounts[p.Subcategory]; !ok {
				facets.Subcategories = append(facets.Subcategories, p.Subcategory)
			}
			facets.CategoryCounts[p.Subcategory]++
		}

		for _, s := range p.Sizes {
			if s == "" {
				continue
			}
			if _, ok := seenSize[s]; !ok {
				seenSize[s] = struct{}{}
				facets.Sizes = append(facets.Sizes, s)
			}
		}
		for _, c := range p.Colors {
			if c == "" {
				continue
			}
			if _, ok := seenColor[c]; !ok {
				seenColor[c] = struct{}{}
				facets.Colors = append(facets.Colors, c)
			}
		}
		if p.Fit != "" {
			fit := string(p.Fit)
			if _, ok := seenFit[fit]; !ok {
				seenFit[fit] = struct{}{}
				facets.Fits = append(facets.Fits, fit)
			}
		}
	}

	sort.Strings(facets.Subcategories)
	sort.Strings(facets.Fits)
	sort.SliceStable(facets.Sizes, func(i, j int) bool {
		return domain.SizeRank(facets.Sizes[i]) < domain.SizeRank(facets.Sizes[j])
	})

	return facets
}
