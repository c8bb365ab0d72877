package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CheckAuth promotes session auth state into the request context. Anonymous
// sessions pass through untouched.
func CheckAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess := SessionFromContext(ctx)
			if sess == nil || !sess.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithAuthStatus(ctx, sess.UID, sess.IsAdmin)
			if logg != nil {
				ctx = logg.WithUserID(ctx, sess.UID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProtectRoutes redirects anonymous visitors to /401 and non-admins hitting
// the admin area to /403. The storefront's form flows expect redirects,
// not bare status codes.
func ProtectRoutes() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if !IsAuthenticated(ctx) {
				responses.Redirect(w, r, "/401", http.StatusFound)
				return
			}
			if strings.HasPrefix(r.URL.Path, "/admin") && !IsAdmin(ctx) {
				responses.Redirect(w, r, "/403", http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
