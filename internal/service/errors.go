package service

import "errors"

var (
	ErrNotAuthenticated     = errors.New("please sign in to complete your order")
	ErrMissingCredentials   = errors.New("email and password are required")
	ErrSignInFailed         = errors.New("sign in failed")
	ErrSignOutFailed        = errors.New("sign out failed")
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrInvalidPaymentMethod = errors.New("payment method must be paypal or cod")
	ErrInvalidView          = errors.New("unknown view")
	ErrOrderNotSaved        = errors.New("order could not be saved, your cart was kept")
	ErrOperationInProgress  = errors.New("operation already in progress")
)
