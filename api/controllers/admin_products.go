package controllers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type adminProductRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Summary     string `json:"summary" validate:"required,max=500"`
	Price       string `json:"price" validate:"required"`
	Description string `json:"description" validate:"required"`
	Image       string `json:"image"`
	CSRFToken   string `json:"_csrf"`
}

func (p adminProductRequest) toInput() productsvc.ProductInput {
	return productsvc.ProductInput{
		Title:       p.Title,
		Summary:     p.Summary,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
	}
}

// AdminListProducts returns the catalog for the admin area.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// AdminGetProduct returns one product for the edit form.
func AdminGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct adds a product and redirects back to the admin list,
// preserving the form's post-redirect flow.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		input, err := decodeAdminProduct(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if _, err := svc.CreateProduct(ctx, input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.Redirect(w, r, "/admin/products", http.StatusFound)
	}
}

// AdminUpdateProduct rewrites a product's fields. An empty image keeps the
// stored one.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		input, err := decodeAdminProduct(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if _, err := svc.UpdateProduct(ctx, chi.URLParam(r, "id"), input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.Redirect(w, r, "/admin/products", http.StatusFound)
	}
}

// AdminDeleteProduct removes a product. Carts referencing it lose the line
// at their next price reconciliation.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Product has been deleted.",
		})
	}
}

func decodeAdminProduct(r *http.Request) (productsvc.ProductInput, error) {
	if validators.IsFormRequest(r) {
		values, err := validators.ParseForm(r)
		if err != nil {
			return productsvc.ProductInput{}, err
		}
		return adminProductFromForm(values), nil
	}

	var payload adminProductRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return productsvc.ProductInput{}, err
	}
	return payload.toInput(), nil
}

func adminProductFromForm(values url.Values) productsvc.ProductInput {
	return productsvc.ProductInput{
		Title:       values.Get("title"),
		Summary:     values.Get("summary"),
		Price:       values.Get("price"),
		Description: values.Get("description"),
		Image:       values.Get("image"),
	}
}
