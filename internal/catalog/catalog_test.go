package catalog

import (
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsSixProducts(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.All(), 6)
	assert.Equal(t, "KEBUU KIDS FASHION STORY", c.Site().Name)
	assert.Equal(t, []string{"Ethiopia", "Egypt"}, c.Site().Locations)

	p, err := c.Get("3")
	require.NoError(t, err)
	assert.Equal(t, "Cozy Bear Onesie", p.Name)
	assert.Equal(t, 950.0, p.Price)
	assert.Equal(t, domain.CategoryBaby, p.Category)
}

func TestGet_NotFound(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Get("42")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestByCategory(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	counts := map[domain.Category]int{}
	for _, cat := range domain.Categories {
		for _, p := range c.ByCategory(cat) {
			assert.Equal(t, cat, p.Category)
		}
		counts[cat] = len(c.ByCategory(cat))
	}
	assert.Equal(t, map[domain.Category]int{
		domain.CategoryBaby:        1,
		domain.CategoryKids:        3,
		domain.CategoryAccessories: 2,
	}, counts)
}

func TestFeatured(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	featured := c.Featured(4)
	require.Len(t, featured, 4)
	assert.Equal(t, "1", featured[0].ID)
	assert.Equal(t, "4", featured[3].ID)
	assert.Len(t, c.Featured(100), 6)
	assert.Empty(t, c.Featured(-1))
}

func TestAll_ReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	all := c.All()
	all[0].Name = "changed"
	p, _ := c.Get("1")
	assert.Equal(t, "Sunshine Floral Dress", p.Name)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad category": "products:\n  - id: \"1\"\n    category: Teens\n",
		"duplicate id": "products:\n  - id: \"1\"\n    category: Kids\n  - id: \"1\"\n    category: Baby\n",
		"missing id":   "products:\n  - name: x\n    category: Kids\n",
		"bad yaml":     "products: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}
