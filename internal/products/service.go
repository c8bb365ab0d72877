package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service exposes catalog operations to handlers and the cart middleware.
type Service interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	FindMultiple(ctx context.Context, ids []string) ([]Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ProductInput is the admin-facing payload for create/update. Image carries
// the stored filename; an empty value on update preserves the prior image.
type ProductInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Summary     string `json:"summary" validate:"required,max=500"`
	Price       string `json:"price" validate:"required"`
	Description string `json:"description" validate:"required"`
	Image       string `json:"image"`
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) FindMultiple(ctx context.Context, ids []string) ([]Product, error) {
	return s.repo.FindMultiple(ctx, ids)
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	product, err := productFromInput(input)
	if err != nil {
		return nil, err
	}
	if product.Image == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product image is required")
	}
	if _, err := s.repo.Insert(ctx, product); err != nil {
		return nil, err
	}
	product.RefreshImageData()
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	product, err := productFromInput(input)
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	// Mirror the lookup-then-remove flow so a bad id surfaces as 404 even
	// when nothing would have matched the delete.
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Remove(ctx, id)
}

func productFromInput(input ProductInput) (*Product, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(input.Price))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal number")
	}
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return &Product{
		Title:       strings.TrimSpace(input.Title),
		Summary:     strings.TrimSpace(input.Summary),
		Price:       price.Round(2),
		Description: strings.TrimSpace(input.Description),
		Image:       strings.TrimSpace(input.Image),
	}, nil
}
