package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrProductNotFound = errors.New("product not found")

type file struct {
	Site     domain.SiteInfo  `yaml:"site"`
	Products []domain.Product `yaml:"products"`
}

// Catalog is read-only once loaded.
type Catalog struct {
	site     domain.SiteInfo
	products []domain.Product
	byID     map[string]int
}

// Default loads the catalog shipped with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		site:     f.Site,
		products: f.Products,
		byID:     make(map[string]int, len(f.Products)),
	}
	for i, p := range f.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("product #%d has no id", i)
		}
		if !p.Category.Valid() {
			return nil, fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %s: negative price", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %s", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

func (c *Catalog) Site() domain.SiteInfo {
	return c.site
}

func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Get(id string) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

func (c *Catalog) ByCategory(category domain.Category) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns the first n products, the home page preview.
func (c *Catalog) Featured(n int) []domain.Product {
	if n > len(c.products) {
		n = len(c.products)
	}
	if n < 0 {
		n = 0
	}
	out := make([]domain.Product, n)
	copy(out, c.products[:n])
	return out
}
