package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/square"
)

// SuccessPath and FailurePath are where the hosted payment page sends the
// customer back to.
const (
	SuccessPath = "/orders/success"
	FailurePath = "/orders/failure"
)

// Service turns a cart into a pending order and a hosted payment link.
type Service interface {
	StartCheckout(ctx context.Context, user users.User, c cart.Cart) (*Result, error)
}

// Result is a created order plus the hosted page the customer is sent to.
type Result struct {
	Order      *orders.Order
	PaymentURL string
}

type paymentLinker interface {
	CreatePaymentLink(ctx context.Context, params square.PaymentLinkParams) (string, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, user users.User, c cart.Cart) (*orders.Order, error)
}

// Config carries the checkout wiring that comes from the environment.
type Config struct {
	BaseURL    string
	LocationID string
	Currency   string
}

type service struct {
	orders   orderCreator
	payments paymentLinker
	cfg      Config
}

// NewService builds the checkout service.
func NewService(orderSvc orderCreator, payments paymentLinker, cfg Config) (Service, error) {
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url required")
	}
	return &service{orders: orderSvc, payments: payments, cfg: cfg}, nil
}

// StartCheckout snapshots the cart into a pending order, then creates a
// hosted payment link for the cart lines. The order insert happens first so
// a payment-provider failure leaves a traceable pending order.
func (s *service) StartCheckout(ctx context.Context, user users.User, c cart.Cart) (*Result, error) {
	order, err := s.orders.CreateOrder(ctx, user, c)
	if err != nil {
		return nil, err
	}

	lines := make([]square.PaymentLinkLineItem, 0, len(c.Items))
	for _, item := range c.Items {
		cents, err := toCents(item.Product.Price)
		if err != nil {
			return nil, err
		}
		lines = append(lines, square.PaymentLinkLineItem{
			Name:        item.Product.Title,
			Quantity:    item.Quantity,
			AmountCents: cents,
			Currency:    s.cfg.Currency,
		})
	}

	url, err := s.payments.CreatePaymentLink(ctx, square.PaymentLinkParams{
		LocationID:     s.cfg.LocationID,
		RedirectURL:    strings.TrimRight(s.cfg.BaseURL, "/") + SuccessPath,
		Description:    fmt.Sprintf("Order %s", order.ID),
		LineItems:      lines,
		IdempotencyKey: order.ID,
	})
	if err != nil {
		return nil, err
	}

	return &Result{Order: order, PaymentURL: url}, nil
}

// toCents converts a two-decimal unit price to an integer amount of the
// currency's minor unit.
func toCents(price decimal.Decimal) (int64, error) {
	cents := price.Mul(decimal.NewFromInt(100))
	if !cents.Equal(cents.Truncate(0)) {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "price has sub-cent precision")
	}
	return cents.IntPart(), nil
}
