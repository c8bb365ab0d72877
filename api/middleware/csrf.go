package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const csrfField = "_csrf"

// CSRF requires the per-session token on every state-changing request. The
// token travels as a form field, a JSON body field, or a query parameter
// (the DELETE case, where the storefront sends no body).
func CSRF(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			sess := SessionFromContext(ctx)
			if sess == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid csrf token"))
				return
			}

			token, err := extractCSRFToken(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if !security.TokensEqual(token, sess.CSRFToken) {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "path", r.URL.Path), "csrf.rejected")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid csrf token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractCSRFToken(r *http.Request) (string, error) {
	if token := r.URL.Query().Get(csrfField); token != "" {
		return token, nil
	}

	if r.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "json"):
		var payload struct {
			Token string `json:"_csrf"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", nil
		}
		return payload.Token, nil
	case contentType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", nil
		}
		return values.Get(csrfField), nil
	}
	return "", nil
}
