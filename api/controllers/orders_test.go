package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	ordersvc "github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/session"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	result *checkoutsvc.Result
	err    error

	user users.User
	cart cart.Cart
}

func (s *stubCheckoutService) StartCheckout(ctx context.Context, user users.User, c cart.Cart) (*checkoutsvc.Result, error) {
	s.user = user
	s.cart = c
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubUserFinder struct {
	user *users.User
}

func (s *stubUserFinder) FindByID(ctx context.Context, id string) (*users.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return s.user, nil
}

type stubOrderService struct {
	orders    []ordersvc.Order
	statusID  string
	newStatus string
	updateErr error
}

func (s *stubOrderService) CreateOrder(ctx context.Context, user users.User, c cart.Cart) (*ordersvc.Order, error) {
	return &ordersvc.Order{ID: "o1", User: user, Cart: c, Status: ordersvc.StatusPending}, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id, status string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.statusID = id
	s.newStatus = status
	return nil
}

func (s *stubOrderService) ListAll(ctx context.Context) ([]ordersvc.Order, error) {
	return s.orders, nil
}

func (s *stubOrderService) ListForUser(ctx context.Context, userID string) ([]ordersvc.Order, error) {
	var owned []ordersvc.Order
	for _, order := range s.orders {
		if order.User.ID == userID {
			owned = append(owned, order)
		}
	}
	return owned, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, id string) (*ordersvc.Order, error) {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func authedOrderRequest(t *testing.T, sess *session.Session, uid string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/orders?_csrf=tok-1", nil)
	r = withSession(r, sess)
	return r.WithContext(middleware.WithAuthStatus(r.Context(), uid, false))
}

func TestAddOrderRedirectsToPaymentPage(t *testing.T) {
	t.Parallel()

	manager, store := newTestManager(t)
	sess := newTestSession(t, manager)
	sess.UID = "u1"
	sess.Cart.AddItem(products.Product{ID: "p1", Title: "Mug", Price: decimal.RequireFromString("10.00")})

	checkout := &stubCheckoutService{result: &checkoutsvc.Result{
		Order:      &ordersvc.Order{ID: "o1", Status: ordersvc.StatusPending},
		PaymentURL: "https://square.link/pay/abc",
	}}
	finder := &stubUserFinder{user: &users.User{ID: "u1", Email: "a@b.com"}}

	rec := httptest.NewRecorder()
	AddOrder(checkout, finder, manager, testLogger())(rec, authedOrderRequest(t, sess, "u1"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "https://square.link/pay/abc" {
		t.Fatalf("expected payment redirect, got %q", loc)
	}
	if checkout.cart.TotalQuantity != 1 {
		t.Fatalf("checkout received wrong cart: %#v", checkout.cart)
	}
	if len(sess.Cart.Items) != 0 {
		t.Fatalf("cart must be emptied after checkout")
	}

	stored, err := store.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if len(stored.Cart.Items) != 0 {
		t.Fatalf("emptied cart must be persisted")
	}
}

func TestAddOrderRequiresAuthentication(t *testing.T) {
	t.Parallel()

	manager, _ := newTestManager(t)
	sess := newTestSession(t, manager)

	r := withSession(httptest.NewRequest(http.MethodPost, "/orders?_csrf=tok-1", nil), sess)
	rec := httptest.NewRecorder()
	AddOrder(&stubCheckoutService{}, &stubUserFinder{}, manager, testLogger())(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestAddOrderKeepsCartOnCheckoutFailure(t *testing.T) {
	t.Parallel()

	manager, _ := newTestManager(t)
	sess := newTestSession(t, manager)
	sess.Cart.AddItem(products.Product{ID: "p1", Title: "Mug", Price: decimal.RequireFromString("10.00")})

	checkout := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeDependency, "payment provider unavailable")}
	finder := &stubUserFinder{user: &users.User{ID: "u1"}}

	rec := httptest.NewRecorder()
	AddOrder(checkout, finder, manager, testLogger())(rec, authedOrderRequest(t, sess, "u1"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if len(sess.Cart.Items) != 1 {
		t.Fatalf("cart must survive a failed checkout")
	}
}

func TestGetOrdersReturnsOwnOrdersOnly(t *testing.T) {
	t.Parallel()

	svc := &stubOrderService{orders: []ordersvc.Order{
		{ID: "o1", User: users.User{ID: "u1"}},
		{ID: "o2", User: users.User{ID: "u2"}},
	}}

	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r = r.WithContext(middleware.WithAuthStatus(r.Context(), "u1", false))

	rec := httptest.NewRecorder()
	GetOrders(svc, testLogger())(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data []ordersvc.Order `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].ID != "o1" {
		t.Fatalf("expected only the caller's orders: %s", rec.Body.String())
	}
}
