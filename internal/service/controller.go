package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Dependencies are shared by every controller of a process.
type Dependencies struct {
	Auth      auth.Authenticator
	Orders    repository.OrderRepository
	Publisher publisher.OrderPublisher
	Logger    *zap.Logger
	// Timeout bounds each collaborator call.
	Timeout time.Duration
	Now     func() time.Time
	NewID   func() string
}

// Observer receives a copy of the state after every transition.
type Observer func(domain.SessionState)

// Controller owns the state of one shopper session.
type Controller struct {
	mu       sync.Mutex
	state    domain.SessionState
	version  uint64
	deps     Dependencies
	observer Observer

	notifyMu sync.Mutex
	notified uint64
}

type Option func(*Controller)

// WithState starts the controller from a restored state. Busy flags are dropped
// because no call survives a restore.
func WithState(s domain.SessionState) Option {
	return func(c *Controller) {
		c.state = s.Clone()
		c.state.Busy = domain.Busy{}
		if !c.state.View.Valid() {
			c.state.View = domain.ViewHome
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

func NewController(deps Dependencies, opts ...Option) *Controller {
	if deps.Timeout <= 0 {
		deps.Timeout = defaultTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = func() string { return uuid.New().String() }
	}
	if deps.Publisher == nil {
		deps.Publisher = publisher.NopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	c := &Controller{
		state: domain.NewSessionState(),
		deps:  deps,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Snapshot() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Controller) CartTotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Cart.Total()
}

func (c *Controller) AddToCart(p domain.Product) {
	c.apply(func(s domain.SessionState) domain.SessionState {
		return AddToCart(s, p)
	})
}

func (c *Controller) RemoveFromCart(productID string) {
	c.apply(func(s domain.SessionState) domain.SessionState {
		return RemoveFromCart(s, productID)
	})
}

func (c *Controller) Navigate(v domain.View) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidView, v)
	}
	c.apply(func(s domain.SessionState) domain.SessionState {
		return Navigate(s, v)
	})
	return nil
}

func (c *Controller) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if !c.begin(func(b *domain.Busy) *bool { return &b.SigningIn }) {
		return nil, ErrOperationInProgress
	}
	defer c.end(func(b *domain.Busy) *bool { return &b.SigningIn })

	ctx, cancel := context.WithTimeout(ctx, c.deps.Timeout)
	defer cancel()

	user, err := c.deps.Auth.SignIn(ctx, email, password)
	if err != nil {
		c.deps.Logger.Warn("sign in failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSignInFailed, err)
	}

	c.apply(func(s domain.SessionState) domain.SessionState {
		return SignedIn(s, *user)
	})
	u := *user
	return &u, nil
}

func (c *Controller) SignOut(ctx context.Context) error {
	if !c.begin(func(b *domain.Busy) *bool { return &b.SigningOut }) {
		return ErrOperationInProgress
	}
	defer c.end(func(b *domain.Busy) *bool { return &b.SigningOut })

	ctx, cancel := context.WithTimeout(ctx, c.deps.Timeout)
	defer cancel()

	if err := c.deps.Auth.SignOut(ctx); err != nil {
		c.deps.Logger.Warn("sign out failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrSignOutFailed, err)
	}

	c.apply(SignedOut)
	return nil
}

// Checkout places an order for the current cart. The cart is only emptied after the
// repository confirms the order; on any failure it is left as it was.
func (c *Controller) Checkout(ctx context.Context, method domain.PaymentMethod) (*domain.Order, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	c.mu.Lock()
	if c.state.User == nil {
		c.state = Navigate(c.state, domain.ViewLogin)
		version, snapshot := c.commitLocked()
		c.mu.Unlock()
		c.notify(version, snapshot)
		return nil, ErrNotAuthenticated
	}
	if c.state.Busy.CheckingOut {
		c.mu.Unlock()
		return nil, ErrOperationInProgress
	}
	if len(c.state.Cart) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyCart
	}
	order := domain.NewOrder(c.deps.NewID(), c.state.User.ID, c.state.Cart, method, c.deps.Now())
	c.state.Busy.CheckingOut = true
	version, snapshot := c.commitLocked()
	c.mu.Unlock()
	c.notify(version, snapshot)
	defer c.end(func(b *domain.Busy) *bool { return &b.CheckingOut })

	saveCtx, cancel := context.WithTimeout(ctx, c.deps.Timeout)
	defer cancel()

	if err := c.deps.Orders.SaveOrder(saveCtx, order); err != nil {
		c.deps.Logger.Error("save order failed",
			zap.String("order_id", order.ID),
			zap.String("user_id", order.UserID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrOrderNotSaved, err)
	}

	c.apply(func(s domain.SessionState) domain.SessionState {
		return Navigate(RemoveOrdered(s, order.Items), domain.ViewHome)
	})
	c.deps.Logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("method", string(method)),
		zap.Float64("total", order.Total))

	pubCtx, pubCancel := context.WithTimeout(context.WithoutCancel(ctx), c.deps.Timeout)
	defer pubCancel()
	if err := c.deps.Publisher.Publish(pubCtx, order); err != nil {
		c.deps.Logger.Warn("publish order event failed", zap.String("order_id", order.ID), zap.Error(err))
	}

	return order.Clone(), nil
}

// Orders lists the signed-in user's orders.
func (c *Controller) Orders(ctx context.Context) ([]*domain.Order, error) {
	c.mu.Lock()
	user := c.state.User
	c.mu.Unlock()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, c.deps.Timeout)
	defer cancel()
	orders, err := c.deps.Orders.ListOrdersByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// CheckoutMessage is the confirmation shown after a successful checkout.
func CheckoutMessage(method domain.PaymentMethod) string {
	if method == domain.PaymentMethodCOD {
		return "Order placed! Please pay cash on delivery."
	}
	return "Payment successful! Order processed."
}

func (c *Controller) apply(transition func(domain.SessionState) domain.SessionState) {
	c.mu.Lock()
	c.state = transition(c.state)
	version, snapshot := c.commitLocked()
	c.mu.Unlock()
	c.notify(version, snapshot)
}

// begin sets a busy flag and reports false if it was already set.
func (c *Controller) begin(flag func(*domain.Busy) *bool) bool {
	c.mu.Lock()
	f := flag(&c.state.Busy)
	if *f {
		c.mu.Unlock()
		return false
	}
	*f = true
	version, snapshot := c.commitLocked()
	c.mu.Unlock()
	c.notify(version, snapshot)
	return true
}

func (c *Controller) end(flag func(*domain.Busy) *bool) {
	c.apply(func(s domain.SessionState) domain.SessionState {
		*flag(&s.Busy) = false
		return s
	})
}

// commitLocked numbers the current state. Callers hold c.mu.
func (c *Controller) commitLocked() (uint64, domain.SessionState) {
	c.version++
	return c.version, c.state.Clone()
}

// notify delivers snapshots in commit order and drops ones overtaken by a newer commit.
func (c *Controller) notify(version uint64, s domain.SessionState) {
	if c.observer == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if version <= c.notified {
		return
	}
	c.notified = version
	c.observer(s)
}
