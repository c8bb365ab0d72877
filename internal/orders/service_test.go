package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubOrderRepo struct {
	inserted      *Order
	updatedID     string
	updatedStatus string
}

func (s *stubOrderRepo) Insert(_ context.Context, order *Order) (string, error) {
	s.inserted = order
	order.ID = "o1"
	return order.ID, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	s.updatedID = id
	s.updatedStatus = status
	return nil
}

func (s *stubOrderRepo) FindAll(context.Context) ([]Order, error) { return nil, nil }

func (s *stubOrderRepo) FindAllForUser(context.Context, string) ([]Order, error) { return nil, nil }

func (s *stubOrderRepo) FindByID(context.Context, string) (*Order, error) { return nil, nil }

func filledCart(t *testing.T) cart.Cart {
	t.Helper()
	c := cart.New()
	c.AddItem(products.Product{ID: "p1", Title: "Widget", Price: decimal.RequireFromString("10.00")})
	return *c
}

func TestCreateOrderSnapshotsWithoutPasswordHash(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := users.User{ID: "u1", Email: "jane@example.com", PasswordHash: "hash"}
	order, err := svc.CreateOrder(context.Background(), user, filledCart(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", order.Status)
	}
	if repo.inserted.User.PasswordHash != "" {
		t.Fatal("password hash leaked into order snapshot")
	}
	if order.ID != "o1" {
		t.Fatalf("expected assigned id, got %q", order.ID)
	}
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubOrderRepo{})
	_, err := svc.CreateOrder(context.Background(), users.User{ID: "u1"}, *cart.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusRejectsBlank(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{}
	svc, _ := NewService(repo)

	if err := svc.UpdateStatus(context.Background(), "o1", "   "); err == nil {
		t.Fatal("expected error for blank status")
	}
	if repo.updatedID != "" {
		t.Fatal("blank status must not reach the repository")
	}

	if err := svc.UpdateStatus(context.Background(), "o1", " shipped "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updatedStatus != "shipped" {
		t.Fatalf("expected trimmed status, got %q", repo.updatedStatus)
	}
}
