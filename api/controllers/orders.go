package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	cartpkg "github.com/angelmondragon/storefront-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	ordersvc "github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/session"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type userFinder interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

// AddOrder converts the session cart into a pending order, clears the cart,
// and sends the customer to the hosted payment page.
func AddOrder(svc checkoutsvc.Service, userRepo userFinder, manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess := middleware.SessionFromContext(ctx)
		if sess == nil || sess.Cart == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		uid := middleware.UserIDFromContext(ctx)
		if uid == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		user, err := userRepo.FindByID(ctx, uid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.StartCheckout(ctx, *user, *sess.Cart)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sess.Cart = cartpkg.New()
		if err := manager.Save(ctx, sess); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.Redirect(w, r, result.PaymentURL, http.StatusSeeOther)
	}
}

// GetOrders lists the logged-in user's orders, newest first.
func GetOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		uid := middleware.UserIDFromContext(ctx)
		if uid == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		items, err := svc.ListForUser(ctx, uid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// GetOrderSuccess is where the payment page sends the customer after a
// completed payment.
func GetOrderSuccess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "success"})
	}
}

// GetOrderFailure is the cancel/failure landing.
func GetOrderFailure() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "failure"})
	}
}
