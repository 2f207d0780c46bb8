package domain

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryMen         Category = "men"
	CategoryWomen       Category = "women"
	CategoryKids        Category = "kids"
	CategoryAccessories Category = "accessories"
)

var categories = []Category{CategoryMen, CategoryWomen, CategoryKids, CategoryAccessories}

func ParseCategory(s string) (Category, bool) {
	for _, c := range categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type Fit string

const (
	FitRegular  Fit = "Regular Fit"
	FitSlim     Fit = "Slim Fit"
	FitOversize Fit = "Oversized"
	FitRelaxed  Fit = "Relaxed Fit"
)

func (f Fit) Valid() bool {
	switch f {
	case FitRegular, FitSlim, FitOversize, FitRelaxed:
		return true
	}
	return false
}

// SizeOrder is the canonical apparel size ordering used by filters and listings.
var SizeOrder = []string{"XS", "S", "M", "L", "XL", "XXL", "2XL", "3XL", "4XL", "5XL", "6XL"}

// SizeRank returns the position of size in SizeOrder, or -1 for sizes outside the table.
func SizeRank(size string) int {
	for i, s := range SizeOrder {
		if s == size {
			return i
		}
	}
	return -1
}

type Product struct {
	ID          int64     `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Price       float64   `json:"price" bson:"price"`
	Category    Category  `json:"category" bson:"category"`
	Subcategory string    `json:"subcategory" bson:"subcategory"`
	Image       string    `json:"image" bson:"image"`
	Images      []string  `json:"images" bson:"images"`
	Description string    `json:"description" bson:"description"`
	Fabric      string    `json:"fabric,omitempty" bson:"fabric,omitempty"`
	Fit         Fit       `json:"fit" bson:"fit"`
	Sizes       []string  `json:"sizes" bson:"sizes"`
	Colors      []string  `json:"colors" bson:"colors"`
	Stock       int       `json:"stock" bson:"stock"`
	Rating      float64   `json:"rating" bson:"rating"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// Validate checks catalog invariants and applies the default fit.
func (p *Product) Validate() error {
	var fields []string
	if p.ID <= 0 {
		fields = append(fields, "id")
	}
	if p.Name == "" {
		fields = append(fields, "name")
	}
	if p.Price < 0 {
		fields = append(fields, "price")
	}
	if _, ok := ParseCategory(string(p.Category)); !ok {
		fields = append(fields, "category")
	}
	if p.Subcategory == "" {
		fields = append(fields, "subcategory")
	}
	if p.Image == "" {
		fields = append(fields, "image")
	}
	if p.Description == "" {
		fields = append(fields, "description")
	}
	if p.Fit == "" {
		p.Fit = FitRegular
	} else if !p.Fit.Valid() {
		fields = append(fields, "fit")
	}
	for _, s := range p.Sizes {
		if SizeRank(s) < 0 {
			fields = append(fields, fmt.Sprintf("sizes[%s]", s))
		}
	}
	if p.Stock < 0 {
		fields = append(fields, "stock")
	}
	if p.Rating < 0 || p.Rating > 5 {
		fields = append(fields, "rating")
	}
	if len(fields) > 0 {
		return NewValidationError("invalid product", fields...)
	}
	return nil
}

// Facets is the set of filter options offered for a category.
type Facets struct {
	Subcategories  []string       `json:"subcategories"`
	Sizes          []string       `json:"sizes"`
	Colors         []string       `json:"colors"`
	Fits           []string       `json:"fits"`
	CategoryCounts map[string]int `json:"categoryCounts"`
}

func EmptyFacets() *Facets {
	return &Facets{
		Subcategories:  []string{},
		Sizes:          []string{},
		Colors:         []string{},
		Fits:           []string{},
		CategoryCounts: map[string]int{},
	}
}
