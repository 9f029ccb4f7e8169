package domain

import (
	"fmt"
	"strings"
)

type View string

const (
	ViewHome  View = "HOME"
	ViewShop  View = "SHOP"
	ViewCart  View = "CART"
	ViewAbout View = "ABOUT"
	ViewLogin View = "LOGIN"
)

func (v View) Valid() bool {
	switch v {
	case ViewHome, ViewShop, ViewCart, ViewAbout, ViewLogin:
		return true
	}
	return false
}

// ParseView accepts view names in any case.
func ParseView(s string) (View, error) {
	v := View(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown view %q", s)
	}
	return v, nil
}
