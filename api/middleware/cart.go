package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/session"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Cart makes sure the session carries a cart and reconciles its prices
// against the catalog before the handler runs. A catalog change mid-session
// is reflected before any page reads the cart, matching what the customer
// will be charged.
func Cart(manager *session.Manager, catalog cart.CatalogLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess := SessionFromContext(ctx)
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			if sess.Cart == nil {
				sess.Cart = cart.New()
			}

			before := sess.Cart.TotalPrice
			beforeLines := len(sess.Cart.Items)
			if err := sess.Cart.ReconcilePrices(ctx, catalog); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			// Persist only when reconciliation actually changed something,
			// so read-only pages don't rewrite the session document.
			if !sess.Cart.TotalPrice.Equal(before) || len(sess.Cart.Items) != beforeLines {
				if err := manager.Save(ctx, sess); err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
