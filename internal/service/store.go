package service

import "github.com/fjod/go_cart/storefront/internal/domain"

// The functions below are the only way session state changes. Each returns a new
// state and never writes through the cart slice of its input.

func AddToCart(s domain.SessionState, p domain.Product) domain.SessionState {
	cart := s.Cart.Clone()
	if i := cart.Index(p.ID); i >= 0 {
		cart[i].Quantity++
	} else {
		cart = append(cart, domain.CartItem{Product: p, Quantity: 1})
	}
	s.Cart = cart
	return s
}

// RemoveFromCart drops the whole line regardless of quantity.
func RemoveFromCart(s domain.SessionState, productID string) domain.SessionState {
	i := s.Cart.Index(productID)
	if i < 0 {
		return s
	}
	cart := make(domain.Cart, 0, len(s.Cart)-1)
	cart = append(cart, s.Cart[:i]...)
	cart = append(cart, s.Cart[i+1:]...)
	s.Cart = cart
	return s
}

// RemoveOrdered takes the ordered quantities out of the cart. Lines that reach zero
// are removed; anything added after the order snapshot stays.
func RemoveOrdered(s domain.SessionState, ordered domain.Cart) domain.SessionState {
	cart := make(domain.Cart, 0, len(s.Cart))
	for _, item := range s.Cart {
		if j := ordered.Index(item.ID); j >= 0 {
			item.Quantity -= ordered[j].Quantity
		}
		if item.Quantity > 0 {
			cart = append(cart, item)
		}
	}
	if len(cart) == 0 {
		cart = nil
	}
	s.Cart = cart
	return s
}

func Navigate(s domain.SessionState, v domain.View) domain.SessionState {
	s.View = v
	return s
}

func SignedIn(s domain.SessionState, u domain.User) domain.SessionState {
	s.User = &u
	s.View = domain.ViewHome
	return s
}

func SignedOut(s domain.SessionState) domain.SessionState {
	s.User = nil
	s.View = domain.ViewHome
	return s
}
