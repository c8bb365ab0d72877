package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	ordersvc "github.com/angelmondragon/storefront-backend/internal/orders"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminUpdateOrderEchoesNewStatus(t *testing.T) {
	t.Parallel()

	svc := &stubOrderService{}
	body := `{"newStatus":"fulfilled","_csrf":"tok-1"}`
	r := httptest.NewRequest(http.MethodPatch, "/admin/orders/o1", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r = withURLParam(r, "id", "o1")

	rec := httptest.NewRecorder()
	AdminUpdateOrder(svc, testLogger())(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.statusID != "o1" || svc.newStatus != "fulfilled" {
		t.Fatalf("service received wrong args: id=%q status=%q", svc.statusID, svc.newStatus)
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["message"] != "Order updated." || payload["newStatus"] != "fulfilled" {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestAdminUpdateOrderRequiresStatus(t *testing.T) {
	t.Parallel()

	body := `{"newStatus":"","_csrf":"tok-1"}`
	r := httptest.NewRequest(http.MethodPatch, "/admin/orders/o1", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r = withURLParam(r, "id", "o1")

	rec := httptest.NewRecorder()
	AdminUpdateOrder(&stubOrderService{}, testLogger())(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty status, got %d", rec.Code)
	}
}

func TestAdminListOrdersReturnsEveryOrder(t *testing.T) {
	t.Parallel()

	svc := &stubOrderService{orders: []ordersvc.Order{
		{ID: "o2"},
		{ID: "o1"},
	}}

	rec := httptest.NewRecorder()
	AdminListOrders(svc, testLogger())(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

	var envelope struct {
		Data []ordersvc.Order `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(envelope.Data) != 2 || envelope.Data[0].ID != "o2" {
		t.Fatalf("expected store ordering preserved: %s", rec.Body.String())
	}
}

func TestAdminCreateProductAcceptsFormAndRedirects(t *testing.T) {
	t.Parallel()

	svc := newStubProductService()
	form := "title=Mug&summary=A+mug&price=10.00&description=Holds+coffee&image=mug.jpg&_csrf=tok-1"
	r := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	AdminCreateProduct(svc, testLogger())(rec, r)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/products" {
		t.Fatalf("expected redirect to /admin/products, got %q", loc)
	}
	if len(svc.created) != 1 || svc.created[0].Title != "Mug" || svc.created[0].Price != "10.00" {
		t.Fatalf("service received wrong input: %#v", svc.created)
	}
}

func TestAdminUpdateProductPassesIDAndInput(t *testing.T) {
	t.Parallel()

	svc := newStubProductService()
	body := `{"title":"Mug","summary":"A mug","price":"12.50","description":"Holds coffee","image":"","_csrf":"tok-1"}`
	r := httptest.NewRequest(http.MethodPost, "/admin/products/p1", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r = withURLParam(r, "id", "p1")

	rec := httptest.NewRecorder()
	AdminUpdateProduct(svc, testLogger())(rec, r)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d body=%s", rec.Code, rec.Body.String())
	}
	input, ok := svc.updated["p1"]
	if !ok || input.Price != "12.50" {
		t.Fatalf("service received wrong input: %#v", svc.updated)
	}
}

func TestAdminDeleteProductRespondsWithMessage(t *testing.T) {
	t.Parallel()

	svc := newStubProductService()
	r := httptest.NewRequest(http.MethodDelete, "/admin/products/p1?_csrf=tok-1", nil)
	r = withURLParam(r, "id", "p1")

	rec := httptest.NewRecorder()
	AdminDeleteProduct(svc, testLogger())(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["message"] != "Product has been deleted." {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "p1" {
		t.Fatalf("service received wrong id: %#v", svc.deleted)
	}
}
