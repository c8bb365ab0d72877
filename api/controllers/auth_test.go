package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/session"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	signupErr error
	loginErr  error
	user      *users.User

	signupInput authsvc.SignupInput
	loginInput  authsvc.LoginInput
}

func (s *stubAuthService) Signup(ctx context.Context, input authsvc.SignupInput) (*users.User, error) {
	s.signupInput = input
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return s.user, nil
}

func (s *stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*users.User, error) {
	s.loginInput = input
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.user, nil
}

func TestSignupValidationFailureFlashesAndRedirects(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{signupErr: pkgerrors.New(pkgerrors.CodeValidation, "Please check your input.")}
	manager, _ := newTestManager(t)
	sess := newTestSession(t, manager)

	form := "email=a%40b.com&confirm-email=a%40b.com&password=short&fullname=Max&street=Main&postal=12345&city=Munich&_csrf=tok-1"
	r := withSession(httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form)), sess)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	Signup(svc, manager, testLogger())(rec, r)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/signup" {
		t.Fatalf("expected redirect back to /signup, got %q", loc)
	}
	if sess.Flash == nil {
		t.Fatalf("expected flashed data on the session")
	}
	if sess.Flash.Message != "Please check your input." {
		t.Fatalf("unexpected flash message %q", sess.Flash.Message)
	}
	if sess.Flash.Fields["email"] != "a@b.com" {
		t.Fatalf("entered fields should be flashed back, got %v", sess.Flash.Fields)
	}
	if _, leaked := sess.Flash.Fields["password"]; leaked {
		t.Fatalf("password must never be flashed")
	}
}

func TestSignupSuccessRedirectsToLogin(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{user: &users.User{ID: "u1", Email: "a@b.com"}}
	manager, _ := newTestManager(t)
	sess := newTestSession(t, manager)

	body := `{"email":"a@b.com","confirm-email":"a@b.com","password":"secret1","fullname":"Max","street":"Main","postal":"12345","city":"Munich","_csrf":"tok-1"}`
	r := withSession(httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body)), sess)
	r.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	Signup(svc, manager, testLogger())(rec, r)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
	if svc.signupInput.Email != "a@b.com" || svc.signupInput.City != "Munich" {
		t.Fatalf("service received wrong input: %#v", svc.signupInput)
	}
}

func TestGetSignupConsumesFlashOnce(t *testing.T) {
	t.Parallel()

	manager, _ := newTestManager(t)
	sess := newTestSession(t, manager)
	ctx := context.Background()
	if err := manager.Flash(ctx, sess, session.FlashData{Message: "boom", Fields: map[string]string{"email": "a@b.com"}}); err != nil {
		t.Fatalf("failed to flash: %v", err)
	}

	rec := httptest.NewRecorder()
	GetSignup(manager, testLogger())(rec, withSession(httptest.NewRequest(http.MethodGet, "/signup", nil), sess))

	var envelope struct {
		Data struct {
			InputData    map[string]string `json:"inputData"`
			ErrorMessage string            `json:"errorMessage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if envelope.Data.ErrorMessage != "boom" {
		t.Fatalf("expected flashed message, got %q", envelope.Data.ErrorMessage)
	}
	if envelope.Data.InputData["email"] != "a@b.com" {
		t.Fatalf("expected flashed email, got %v", envelope.Data.InputData)
	}

	rec = httptest.NewRecorder()
	GetSignup(manager, testLogger())(rec, withSession(httptest.NewRequest(http.MethodGet, "/signup", nil), sess))
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if envelope.Data.ErrorMessage != "" {
		t.Fatalf("flash must not replay on refresh, got %q", envelope.Data.ErrorMessage)
	}
}

func TestLoginFailureFlashesGenericMessage(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials. Please double check your email and password.")}
	manager, _ := newTestManager(t)
	sess := newTestSession(t, manager)

	body := `{"email":"a@b.com","password":"wrong","_csrf":"tok-1"}`
	r := withSession(httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)), sess)
	r.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	Login(svc, manager, testLogger())(rec, r)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect back to /login, got %q", loc)
	}
	if sess.Flash == nil || sess.Flash.Fields["email"] != "a@b.com" {
		t.Fatalf("expected flashed email, got %#v", sess.Flash)
	}
	if sess.UID != "" {
		t.Fatalf("failed login must not authenticate the session")
	}
}

func TestLoginSuccessRotatesSessionID(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{user: &users.User{ID: "u1", Email: "a@b.com", IsAdmin: true}}
	manager, store := newTestManager(t)
	sess := newTestSession(t, manager)
	oldID := sess.ID

	form := "email=a%40b.com&password=secret1&_csrf=tok-1"
	r := withSession(httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form)), sess)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	Login(svc, manager, testLogger())(rec, r)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	if sess.UID != "u1" || !sess.IsAdmin {
		t.Fatalf("session identity not set: %#v", sess)
	}
	if sess.ID == oldID {
		t.Fatalf("session id must rotate on login")
	}
	if _, err := store.Get(r.Context(), oldID); err == nil {
		t.Fatalf("old session document must be deleted")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != sess.ID {
		t.Fatalf("cookie must carry the rotated id, got %#v", cookies)
	}
}

func TestLogoutKeepsCart(t *testing.T) {
	t.Parallel()

	manager, store := newTestManager(t)
	sess := newTestSession(t, manager)
	sess.UID = "u1"
	sess.IsAdmin = true

	rec := httptest.NewRecorder()
	Logout(manager, testLogger())(rec, withSession(httptest.NewRequest(http.MethodPost, "/logout", nil), sess))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
	if sess.UID != "" || sess.IsAdmin {
		t.Fatalf("identity must be cleared on logout")
	}

	stored, err := store.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("session must survive logout: %v", err)
	}
	if stored.Cart == nil {
		t.Fatalf("cart must survive logout")
	}
}
