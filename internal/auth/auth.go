package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("email and password are required")

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*domain.User, error)
	SignOut(ctx context.Context) error
}

// MockAuthenticator accepts any non-empty credentials after a fixed delay.
// Replace with a real identity provider in production.
type MockAuthenticator struct {
	SignInDelay  time.Duration
	SignOutDelay time.Duration
}

func NewMockAuthenticator(signInDelay, signOutDelay time.Duration) *MockAuthenticator {
	return &MockAuthenticator{
		SignInDelay:  signInDelay,
		SignOutDelay: signOutDelay,
	}
}

func (m *MockAuthenticator) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := wait(ctx, m.SignInDelay); err != nil {
		return nil, err
	}

	displayName, _, _ := strings.Cut(email, "@")
	return &domain.User{
		ID:          mockUserID(email),
		Email:       email,
		DisplayName: displayName,
	}, nil
}

func (m *MockAuthenticator) SignOut(ctx context.Context) error {
	return wait(ctx, m.SignOutDelay)
}

// mockUserID is stable per email so orders can be listed across sign-ins.
func mockUserID(email string) string {
	return "mock-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
