package controllers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	cartpkg "github.com/angelmondragon/storefront-backend/internal/cart"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/session"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	CSRFToken string `json:"_csrf"`
}

type updateCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
	CSRFToken string `json:"_csrf"`
}

type updatedCartData struct {
	NewTotalQuantity int             `json:"newTotalQuantity"`
	NewTotalPrice    decimal.Decimal `json:"newTotalPrice"`
	UpdatedItemPrice decimal.Decimal `json:"updatedItemPrice"`
}

// GetCart returns the session's cart.
func GetCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFromContext(r.Context())
		if sess == nil || sess.Cart == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		responses.WriteSuccess(w, sess.Cart)
	}
}

// AddCartItem puts one unit of a product into the cart and writes the cart
// back to the session.
func AddCartItem(svc productsvc.Service, manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess := middleware.SessionFromContext(ctx)
		if sess == nil || sess.Cart == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.GetProduct(ctx, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sess.Cart.AddItem(*product)
		if err := manager.Save(ctx, sess); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusCreated, map[string]any{
			"message":       "Cart updated!",
			"newTotalItems": sess.Cart.TotalQuantity,
		})
	}
}

// UpdateCartItem sets a cart line's quantity (zero removes it) and returns
// the recomputed totals for the page to patch in.
func UpdateCartItem(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess := middleware.SessionFromContext(ctx)
		if sess == nil || sess.Cart == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updatedItemPrice, err := sess.Cart.UpdateItem(payload.ProductID, payload.Quantity)
		if err != nil {
			if errors.Is(err, cartpkg.ErrItemNotFound) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not in cart"))
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := manager.Save(ctx, sess); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusCreated, map[string]any{
			"message": "Item updated!",
			"updatedCartData": updatedCartData{
				NewTotalQuantity: sess.Cart.TotalQuantity,
				NewTotalPrice:    sess.Cart.TotalPrice,
				UpdatedItemPrice: updatedItemPrice,
			},
		})
	}
}
