package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/session"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Session restores the request's session from its cookie, or starts a
// fresh anonymous one. Every downstream handler can rely on a session
// being present in the context.
func Session(manager *session.Manager, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := manager.StartOrRestore(ctx, w, r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if logg != nil {
				ctx = logg.WithSessionID(ctx, sess.ID)
			}
			ctx = WithSession(ctx, sess)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
