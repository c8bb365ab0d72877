package controllers

import (
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	authsvc "github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/session"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type signupRequest struct {
	Email        string `json:"email"`
	ConfirmEmail string `json:"confirm-email"`
	Password     string `json:"password"`
	Fullname     string `json:"fullname"`
	Street       string `json:"street"`
	Postal       string `json:"postal"`
	City         string `json:"city"`
	CSRFToken    string `json:"_csrf"`
}

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	CSRFToken string `json:"_csrf"`
}

// GetSignup returns the signup form state: defaults, or whatever a failed
// submission flashed before redirecting back here.
func GetSignup(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := middleware.SessionFromContext(ctx)
		if sess == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		flash, err := manager.ConsumeFlash(ctx, sess)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		inputData := map[string]string{
			"email":        "",
			"confirmEmail": "",
			"fullname":     "",
			"street":       "",
			"postal":       "",
			"city":         "",
		}
		message := ""
		if flash != nil {
			message = flash.Message
			for key, value := range flash.Fields {
				inputData[key] = value
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"inputData":    inputData,
			"errorMessage": message,
		})
	}
}

// Signup creates an account. Failures flash the message plus the entered
// fields and redirect back to the form; only unexpected errors surface as
// error responses.
func Signup(svc authsvc.Service, manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := middleware.SessionFromContext(ctx)
		if sess == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		input, err := decodeSignup(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if _, err := svc.Signup(ctx, input); err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && (typed.Code() == pkgerrors.CodeValidation || typed.Code() == pkgerrors.CodeConflict) {
				if err := manager.Flash(ctx, sess, session.FlashData{
					Message: typed.Message(),
					Fields:  input.EnteredFields(),
				}); err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				responses.Redirect(w, r, "/signup", http.StatusFound)
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.Redirect(w, r, "/login", http.StatusFound)
	}
}

// GetLogin returns the login form state, including flashed data from a
// failed attempt.
func GetLogin(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := middleware.SessionFromContext(ctx)
		if sess == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		flash, err := manager.ConsumeFlash(ctx, sess)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		inputData := map[string]string{"email": ""}
		message := ""
		if flash != nil {
			message = flash.Message
			for key, value := range flash.Fields {
				inputData[key] = value
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"inputData":    inputData,
			"errorMessage": message,
		})
	}
}

// Login authenticates and rotates the session id before marking the
// session as logged in.
func Login(svc authsvc.Service, manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := middleware.SessionFromContext(ctx)
		if sess == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		input, err := decodeLogin(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.Login(ctx, input)
		if err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && typed.Code() == pkgerrors.CodeUnauthorized {
				if err := manager.Flash(ctx, sess, session.FlashData{
					Message: typed.Message(),
					Fields:  map[string]string{"email": input.Email},
				}); err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				responses.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sess.UID = user.ID
		sess.IsAdmin = user.IsAdmin
		if err := manager.RotateID(ctx, w, sess); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.Redirect(w, r, "/", http.StatusFound)
	}
}

// Logout clears the authenticated identity. The session document, and with
// it the cart, stays alive.
func Logout(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := middleware.SessionFromContext(ctx)
		if sess == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		sess.ClearAuth()
		if err := manager.Save(ctx, sess); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.Redirect(w, r, "/login", http.StatusFound)
	}
}

func decodeSignup(r *http.Request) (authsvc.SignupInput, error) {
	if validators.IsFormRequest(r) {
		values, err := validators.ParseForm(r)
		if err != nil {
			return authsvc.SignupInput{}, err
		}
		return signupFromForm(values), nil
	}

	var payload signupRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return authsvc.SignupInput{}, err
	}
	return authsvc.SignupInput{
		Email:        payload.Email,
		ConfirmEmail: payload.ConfirmEmail,
		Password:     payload.Password,
		Fullname:     payload.Fullname,
		Street:       payload.Street,
		Postal:       payload.Postal,
		City:         payload.City,
	}, nil
}

func signupFromForm(values url.Values) authsvc.SignupInput {
	return authsvc.SignupInput{
		Email:        values.Get("email"),
		ConfirmEmail: values.Get("confirm-email"),
		Password:     values.Get("password"),
		Fullname:     values.Get("fullname"),
		Street:       values.Get("street"),
		Postal:       values.Get("postal"),
		City:         values.Get("city"),
	}
}

func decodeLogin(r *http.Request) (authsvc.LoginInput, error) {
	if validators.IsFormRequest(r) {
		values, err := validators.ParseForm(r)
		if err != nil {
			return authsvc.LoginInput{}, err
		}
		return authsvc.LoginInput{
			Email:    values.Get("email"),
			Password: values.Get("password"),
		}, nil
	}

	var payload loginRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return authsvc.LoginInput{}, err
	}
	return authsvc.LoginInput{Email: payload.Email, Password: payload.Password}, nil
}
