package domain

import "fmt"

type Category string

const (
	CategoryBaby        Category = "Baby"
	CategoryKids        Category = "Kids"
	CategoryAccessories Category = "Accessories"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryBaby, CategoryKids, CategoryAccessories}

func (c Category) Valid() bool {
	switch c {
	case CategoryBaby, CategoryKids, CategoryAccessories:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

type Product struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Price       float64  `json:"price" yaml:"price"`
	Currency    string   `json:"currency" yaml:"currency"`
	Category    Category `json:"category" yaml:"category"`
	Image       string   `json:"image" yaml:"image"`
	Description string   `json:"description" yaml:"description"`
}

type SiteInfo struct {
	Name      string   `json:"name" yaml:"name"`
	Tagline   string   `json:"tagline" yaml:"tagline"`
	Phone     string   `json:"phone" yaml:"phone"`
	Email     string   `json:"email" yaml:"email"`
	Locations []string `json:"locations" yaml:"locations"`
}
