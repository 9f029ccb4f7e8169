package domain

type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity for a single line.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart keeps items in first-add order with at most one item per product id.
type Cart []CartItem

// Total is recomputed on every call and is 0 for an empty cart.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c {
		total += item.Subtotal()
	}
	return total
}

// Index returns the position of the item for productID or -1.
func (c Cart) Index(productID string) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Count is the total number of units across all items.
func (c Cart) Count() int {
	n := 0
	for _, item := range c {
		n += item.Quantity
	}
	return n
}
