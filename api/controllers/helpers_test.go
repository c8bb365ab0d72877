package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestManager(t *testing.T) (*session.Manager, *session.MemoryStore) {
	t.Helper()

	store := session.NewMemoryStore()
	manager, err := session.NewManager(store, config.SessionConfig{
		CookieName: "sid",
		TTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to build manager: %v", err)
	}
	return manager, store
}

func newTestSession(t *testing.T, manager *session.Manager) *session.Session {
	t.Helper()

	sess := &session.Session{
		ID:        "sess-1",
		Cart:      cart.New(),
		CSRFToken: "tok-1",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	if err := manager.Save(context.Background(), sess); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return sess
}

func withSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), sess))
}

type stubProductService struct {
	byID    map[string]products.Product
	list    []products.Product
	created []products.ProductInput
	updated map[string]products.ProductInput
	deleted []string
}

func newStubProductService() *stubProductService {
	return &stubProductService{
		byID:    map[string]products.Product{},
		updated: map[string]products.ProductInput{},
	}
}

func (s *stubProductService) GetProduct(ctx context.Context, id string) (*products.Product, error) {
	if p, ok := s.byID[id]; ok {
		return &p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubProductService) ListProducts(ctx context.Context) ([]products.Product, error) {
	return s.list, nil
}

func (s *stubProductService) FindMultiple(ctx context.Context, ids []string) ([]products.Product, error) {
	var found []products.Product
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

func (s *stubProductService) CreateProduct(ctx context.Context, input products.ProductInput) (*products.Product, error) {
	s.created = append(s.created, input)
	return &products.Product{ID: "created", Title: input.Title}, nil
}

func (s *stubProductService) UpdateProduct(ctx context.Context, id string, input products.ProductInput) (*products.Product, error) {
	s.updated[id] = input
	return &products.Product{ID: id, Title: input.Title}, nil
}

func (s *stubProductService) DeleteProduct(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}
