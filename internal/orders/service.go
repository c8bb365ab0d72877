package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service exposes order operations to handlers and checkout.
type Service interface {
	CreateOrder(ctx context.Context, user users.User, c cart.Cart) (*Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListAll(ctx context.Context) ([]Order, error)
	ListForUser(ctx context.Context, userID string) ([]Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
}

type service struct {
	repo Repository
}

// NewService builds the order service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// CreateOrder snapshots the user and cart into a new pending order. The
// password hash is dropped from the snapshot before it is written.
func (s *service) CreateOrder(ctx context.Context, user users.User, c cart.Cart) (*Order, error) {
	if len(c.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	user.PasswordHash = ""

	order := &Order{
		User:   user,
		Cart:   c,
		Status: StatusPending,
	}
	if _, err := s.repo.Insert(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus sets the order status. Any non-empty value is accepted.
func (s *service) UpdateStatus(ctx context.Context, id, status string) error {
	if strings.TrimSpace(status) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must not be empty")
	}
	return s.repo.UpdateStatus(ctx, id, strings.TrimSpace(status))
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.FindAllForUser(ctx, userID)
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.FindByID(ctx, id)
}
