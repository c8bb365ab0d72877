package validators

import (
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ParseForm reads an urlencoded form body. Used by the login, signup, and
// logout flows, which post classic HTML forms rather than JSON.
func ParseForm(r *http.Request) (url.Values, error) {
	if err := r.ParseForm(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	return r.PostForm, nil
}

// IsFormRequest reports whether the request posts an urlencoded form.
func IsFormRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
