package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Home sends visitors to the catalog.
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.Redirect(w, r, "/products", http.StatusFound)
	}
}

// Unauthorized is the landing for visitors bounced off protected routes.
func Unauthorized() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusUnauthorized, types.ErrorEnvelope{
			Error: types.APIError{
				Code:    string(pkgerrors.CodeUnauthorized),
				Message: "authentication required",
			},
		})
	}
}

// Forbidden is the landing for non-admins bounced off the admin area.
func Forbidden() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusForbidden, types.ErrorEnvelope{
			Error: types.APIError{
				Code:    string(pkgerrors.CodeForbidden),
				Message: "access denied",
			},
		})
	}
}

// CSRFToken exposes the session's token to AJAX callers.
func CSRFToken(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFromContext(r.Context())
		if sess == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"csrfToken": sess.CSRFToken})
	}
}
