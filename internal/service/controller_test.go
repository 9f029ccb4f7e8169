package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockAuth struct {
	m        sync.Mutex
	err      error
	signIns  int
	signOuts int
	release  chan struct{}
}

func (a *mockAuth) SignIn(ctx context.Context, email, _ string) (*domain.User, error) {
	a.m.Lock()
	a.signIns++
	err, release := a.err, a.release
	a.m.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: "mock-user-123", Email: email, DisplayName: "parent"}, nil
}

func (a *mockAuth) SignOut(context.Context) error {
	a.m.Lock()
	defer a.m.Unlock()
	a.signOuts++
	return a.err
}

type mockOrders struct {
	m       sync.Mutex
	saved   []*domain.Order
	err     error
	release chan struct{}
	started chan struct{}
}

func (o *mockOrders) SaveOrder(ctx context.Context, order *domain.Order) error {
	if o.started != nil {
		o.started <- struct{}{}
	}
	if o.release != nil {
		select {
		case <-o.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	o.m.Lock()
	defer o.m.Unlock()
	if o.err != nil {
		return o.err
	}
	o.saved = append(o.saved, order.Clone())
	return nil
}

func (o *mockOrders) GetOrder(context.Context, string) (*domain.Order, error) {
	return nil, errors.New("not implemented")
}

func (o *mockOrders) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	o.m.Lock()
	defer o.m.Unlock()
	var out []*domain.Order
	for _, ord := range o.saved {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	return out, nil
}

func (o *mockOrders) Close() error { return nil }

func (o *mockOrders) count() int {
	o.m.Lock()
	defer o.m.Unlock()
	return len(o.saved)
}

type mockPublisher struct {
	m         sync.Mutex
	published []string
	err       error
}

func (p *mockPublisher) Publish(_ context.Context, order *domain.Order) error {
	p.m.Lock()
	defer p.m.Unlock()
	p.published = append(p.published, order.ID)
	return p.err
}

func (p *mockPublisher) Close() error { return nil }

type fixture struct {
	auth   *mockAuth
	orders *mockOrders
	pub    *mockPublisher
	sut    *Controller
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	f := &fixture{auth: &mockAuth{}, orders: &mockOrders{}, pub: &mockPublisher{}}
	f.sut = NewController(Dependencies{
		Auth:      f.auth,
		Orders:    f.orders,
		Publisher: f.pub,
		Logger:    zaptest.NewLogger(t),
		Timeout:   time.Second,
		Now:       func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID:     func() string { return "order-1" },
	}, opts...)
	return f
}

func (f *fixture) signIn(t *testing.T) {
	_, err := f.sut.SignIn(context.Background(), "parent@example.com", "secret")
	require.NoError(t, err)
}

func TestNewController_StartsAtHome(t *testing.T) {
	f := newFixture(t)
	s := f.sut.Snapshot()
	assert.Equal(t, domain.ViewHome, s.View)
	assert.Empty(t, s.Cart)
	assert.Nil(t, s.User)
	assert.Equal(t, 0.0, f.sut.CartTotal())
}

func TestAddRemoveAndTotal(t *testing.T) {
	f := newFixture(t)
	f.sut.AddToCart(dress)
	f.sut.AddToCart(onesie)
	f.sut.AddToCart(onesie)
	assert.Equal(t, 3100.0, f.sut.CartTotal())

	f.sut.RemoveFromCart(onesie.ID)
	f.sut.RemoveFromCart(onesie.ID)
	assert.Equal(t, 1200.0, f.sut.CartTotal())
	assert.Len(t, f.sut.Snapshot().Cart, 1)
}

func TestNavigate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sut.Navigate(domain.ViewAbout))
	assert.Equal(t, domain.ViewAbout, f.sut.Snapshot().View)

	err := f.sut.Navigate(domain.View("CHECKOUT"))
	assert.ErrorIs(t, err, ErrInvalidView)
	assert.Equal(t, domain.ViewAbout, f.sut.Snapshot().View)
}

func TestSignIn_SetsUserAndGoesHome(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sut.Navigate(domain.ViewLogin))

	u, err := f.sut.SignIn(context.Background(), " parent@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", u.Email)

	s := f.sut.Snapshot()
	require.NotNil(t, s.User)
	assert.Equal(t, "mock-user-123", s.User.ID)
	assert.Equal(t, domain.ViewHome, s.View)
	assert.False(t, s.Busy.SigningIn)
}

func TestSignIn_MissingCredentials(t *testing.T) {
	f := newFixture(t)
	_, err := f.sut.SignIn(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = f.sut.SignIn(context.Background(), "a@b.c", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, 0, f.auth.signIns)
}

func TestSignIn_CollaboratorFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("auth down")
	f.auth.err = boom
	require.NoError(t, f.sut.Navigate(domain.ViewLogin))

	_, err := f.sut.SignIn(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, ErrSignInFailed)
	assert.ErrorIs(t, err, boom)

	s := f.sut.Snapshot()
	assert.Nil(t, s.User)
	assert.Equal(t, domain.ViewLogin, s.View)
	assert.False(t, s.Busy.SigningIn)
}

func TestSignIn_LoadingFlagSpansCall(t *testing.T) {
	f := newFixture(t)
	f.auth.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.sut.SignIn(context.Background(), "a@b.c", "pw")
		done <- err
	}()

	require.Eventually(t, func() bool { return f.sut.Snapshot().Busy.SigningIn }, time.Second, time.Millisecond)

	_, err := f.sut.SignIn(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, ErrOperationInProgress)

	close(f.auth.release)
	require.NoError(t, <-done)
	assert.False(t, f.sut.Snapshot().Busy.SigningIn)
}

func TestSignOut_ClearsUser(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	require.NoError(t, f.sut.Navigate(domain.ViewShop))

	require.NoError(t, f.sut.SignOut(context.Background()))
	s := f.sut.Snapshot()
	assert.Nil(t, s.User)
	assert.Equal(t, domain.ViewHome, s.View)
	assert.Equal(t, 1, f.auth.signOuts)
}

func TestSignOut_Failure(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.auth.err = errors.New("boom")

	err := f.sut.SignOut(context.Background())
	assert.ErrorIs(t, err, ErrSignOutFailed)
	assert.NotNil(t, f.sut.Snapshot().User)
}

func TestCheckout_NotAuthenticated(t *testing.T) {
	f := newFixture(t)
	f.sut.AddToCart(dress)
	require.NoError(t, f.sut.Navigate(domain.ViewCart))
	before := f.sut.Snapshot().Cart

	order, err := f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Nil(t, order)

	s := f.sut.Snapshot()
	assert.Equal(t, domain.ViewLogin, s.View)
	assert.Equal(t, before, s.Cart)
	assert.Equal(t, 0, f.orders.count())
}

func TestCheckout_COD(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.sut.AddToCart(dress)
	f.sut.AddToCart(onesie)
	f.sut.AddToCart(onesie)
	require.NoError(t, f.sut.Navigate(domain.ViewCart))

	order, err := f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, domain.OrderStatusCashPending, order.Status)
	assert.Equal(t, domain.PaymentMethodCOD, order.Method)
	assert.Equal(t, 3100.0, order.Total)
	assert.Equal(t, "mock-user-123", order.UserID)
	assert.Len(t, order.Items, 2)

	s := f.sut.Snapshot()
	assert.Empty(t, s.Cart)
	assert.Equal(t, domain.ViewHome, s.View)
	assert.False(t, s.Busy.CheckingOut)
	assert.Equal(t, 1, f.orders.count())
	assert.Equal(t, []string{"order-1"}, f.pub.published)
}

func TestCheckout_PayPal(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.sut.AddToCart(hat)

	order, err := f.sut.Checkout(context.Background(), domain.PaymentMethodPayPal)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Empty(t, f.sut.Snapshot().Cart)
}

func TestCheckout_PersistenceFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.sut.AddToCart(dress)
	require.NoError(t, f.sut.Navigate(domain.ViewCart))
	boom := errors.New("firestore unavailable")
	f.orders.err = boom

	order, err := f.sut.Checkout(context.Background(), domain.PaymentMethodPayPal)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrOrderNotSaved)
	assert.ErrorIs(t, err, boom)

	s := f.sut.Snapshot()
	require.Len(t, s.Cart, 1)
	assert.Equal(t, dress.ID, s.Cart[0].ID)
	assert.Equal(t, domain.ViewCart, s.View)
	assert.False(t, s.Busy.CheckingOut)
	assert.Empty(t, f.pub.published)
}

func TestCheckout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.sut.AddToCart(dress)
	f.pub.err = errors.New("broker down")

	_, err := f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
	require.NoError(t, err)
	assert.Empty(t, f.sut.Snapshot().Cart)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	_, err := f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, f.orders.count())
}

func TestCheckout_InvalidMethod(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.sut.AddToCart(dress)
	_, err := f.sut.Checkout(context.Background(), domain.PaymentMethod("card"))
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Len(t, f.sut.Snapshot().Cart, 1)
}

func TestCheckout_NoInterleaving(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.sut.AddToCart(dress)
	f.orders.started = make(chan struct{}, 1)
	f.orders.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
		done <- err
	}()
	<-f.orders.started

	assert.True(t, f.sut.Snapshot().Busy.CheckingOut)
	_, err := f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
	assert.ErrorIs(t, err, ErrOperationInProgress)

	// added while the first order is being saved
	f.sut.AddToCart(hat)

	close(f.orders.release)
	require.NoError(t, <-done)

	s := f.sut.Snapshot()
	require.Len(t, s.Cart, 1)
	assert.Equal(t, hat.ID, s.Cart[0].ID)
	assert.Equal(t, 1, f.orders.count())
}

func TestCheckout_Timeout(t *testing.T) {
	f := newFixture(t)
	f.sut.deps.Timeout = 20 * time.Millisecond
	f.signIn(t)
	f.sut.AddToCart(dress)
	f.orders.release = make(chan struct{})

	_, err := f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
	assert.ErrorIs(t, err, ErrOrderNotSaved)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, f.sut.Snapshot().Cart, 1)
}

func TestOrders(t *testing.T) {
	f := newFixture(t)
	_, err := f.sut.Orders(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	f.signIn(t)
	f.sut.AddToCart(dress)
	_, err = f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
	require.NoError(t, err)

	orders, err := f.sut.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "order-1", orders[0].ID)
}

func TestObserver_ReceivesEveryTransition(t *testing.T) {
	var m sync.Mutex
	var views []domain.View
	f := newFixture(t, WithObserver(func(s domain.SessionState) {
		m.Lock()
		defer m.Unlock()
		views = append(views, s.View)
	}))

	require.NoError(t, f.sut.Navigate(domain.ViewShop))
	f.sut.AddToCart(dress)
	require.NoError(t, f.sut.Navigate(domain.ViewCart))

	m.Lock()
	defer m.Unlock()
	assert.Equal(t, []domain.View{domain.ViewShop, domain.ViewShop, domain.ViewCart}, views)
}

func TestWithState_DropsBusyFlags(t *testing.T) {
	restored := domain.SessionState{
		View: domain.ViewCart,
		Cart: domain.Cart{{Product: dress, Quantity: 2}},
		User: &domain.User{ID: "u1", Email: "a@b.c"},
		Busy: domain.Busy{CheckingOut: true},
	}
	f := newFixture(t, WithState(restored))

	s := f.sut.Snapshot()
	assert.Equal(t, domain.ViewCart, s.View)
	assert.Equal(t, 2400.0, f.sut.CartTotal())
	assert.False(t, s.Busy.CheckingOut)

	_, err := f.sut.Checkout(context.Background(), domain.PaymentMethodCOD)
	assert.NoError(t, err)
}

func TestCheckoutMessage(t *testing.T) {
	assert.Equal(t, "Order placed! Please pay cash on delivery.", CheckoutMessage(domain.PaymentMethodCOD))
	assert.Equal(t, "Payment successful! Order processed.", CheckoutMessage(domain.PaymentMethodPayPal))
}
