package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senira34/lolipop-wear/internal/domain"
)

func TestLoadSeed(t *testing.T) {
	products, err := loadSeed(filepath.Join("testdata", "products.yaml"))
	require.NoError(t, err)
	require.Len(t, products, 2)

	tee := products[0]
	assert.Equal(t, int64(1), tee.ID)
	assert.Equal(t, domain.CategoryMen, tee.Category)
	assert.Equal(t, domain.FitRegular, tee.Fit)
	assert.Equal(t, []string{"S", "M", "L", "XL"}, tee.Sizes)
	assert.InDelta(t, 4.5, tee.Rating, 0.001)

	// fit is optional and defaults during validation
	assert.Equal(t, domain.FitRegular, products[1].Fit)
}

func TestLoadSeed_ReportsEveryProblem(t *testing.T) {
	_, err := loadSeed(filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id 1")
	assert.Contains(t, err.Error(), "product #3")

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "category")
}

func TestLoadSeed_BadFile(t *testing.T) {
	_, err := loadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read seed file")

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products: [\n"), 0o600))
	_, err = loadSeed(path)
	assert.ErrorContains(t, err, "parse seed file")
}

func TestFilterProducts(t *testing.T) {
	products := []*domain.Product{
		{ID: 1, Subcategory: "T-Shirts", Fit: domain.FitSlim, Sizes: []string{"S", "M"}, Colors: []string{"Black"}},
		{ID: 2, Subcategory: "T-Shirts", Fit: domain.FitRegular, Sizes: []string{"L"}, Colors: []string{"White"}},
		{ID: 3, Subcategory: "Shirts", Fit: domain.FitSlim, Sizes: []string{"M"}, Colors: []string{"Black"}},
	}

	tests := []struct {
		name   string
		filter productFilter
		want   []int64
	}{
		{name: "no filter", want: []int64{1, 2, 3}},
		{name: "subcategory", filter: productFilter{Subcategory: "T-Shirts"}, want: []int64{1, 2}},
		{name: "size and color", filter: productFilter{Size: "M", Color: "Black"}, want: []int64{1, 3}},
		{name: "fit", filter: productFilter{Fit: "Regular Fit"}, want: []int64{2}},
		{name: "nothing matches", filter: productFilter{Size: "XXL"}, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterProducts(products, tt.filter)
			ids := make([]int64, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestLineFor(t *testing.T) {
	p := &domain.Product{ID: 7, Name: "Hoodie", Price: 5000, Image: "/h.jpg", Sizes: []string{"M", "L"}, Colors: []string{"Grey"}}

	item, err := lineFor(p, "L", "Grey", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ProductID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "/h.jpg", item.Image)

	_, err = lineFor(p, "XL", "Grey", 1)
	assert.ErrorContains(t, err, `size "XL"`)

	_, err = lineFor(p, "M", "Red", 1)
	assert.ErrorContains(t, err, `color "Red"`)

	_, err = lineFor(p, "M", "Grey", 0)
	assert.Error(t, err)

	bag := &domain.Product{ID: 8, Name: "Tote"}
	_, err = lineFor(bag, "", "", 1)
	assert.NoError(t, err)
}
