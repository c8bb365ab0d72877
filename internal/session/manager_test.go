package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func testManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	mgr, err := NewManager(store, config.SessionConfig{CookieName: "sid", TTL: 48 * time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return mgr, store
}

func requestWithCookie(name, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if value != "" {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return r
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestStartOrRestoreCreatesNewSession(t *testing.T) {
	t.Parallel()

	mgr, store := testManager(t)
	w := httptest.NewRecorder()

	sess, err := mgr.StartOrRestore(context.Background(), w, requestWithCookie("sid", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == "" || sess.CSRFToken == "" {
		t.Fatalf("expected id and csrf token, got %+v", sess)
	}
	if sess.Cart == nil {
		t.Fatal("new session must carry an empty cart")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 persisted session, got %d", store.Len())
	}

	cookie := sessionCookie(t, w, "sid")
	if cookie.Value != sess.ID {
		t.Fatalf("cookie carries %q, session id is %q", cookie.Value, sess.ID)
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
}

func TestStartOrRestoreRestoresExistingSession(t *testing.T) {
	t.Parallel()

	mgr, _ := testManager(t)
	w := httptest.NewRecorder()
	created, err := mgr.StartOrRestore(context.Background(), w, requestWithCookie("sid", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created.UID = "u1"
	if err := mgr.Save(context.Background(), created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored, err := mgr.StartOrRestore(context.Background(), httptest.NewRecorder(), requestWithCookie("sid", created.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.ID != created.ID || restored.UID != "u1" {
		t.Fatalf("expected restored session, got %+v", restored)
	}
}

func TestStartOrRestoreReplacesUnknownCookie(t *testing.T) {
	t.Parallel()

	mgr, _ := testManager(t)
	w := httptest.NewRecorder()

	sess, err := mgr.StartOrRestore(context.Background(), w, requestWithCookie("sid", "forged-id"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == "forged-id" {
		t.Fatal("forged cookie id must not be adopted")
	}
}

func TestRotateIDKeepsStateAndDropsOldDocument(t *testing.T) {
	t.Parallel()

	mgr, store := testManager(t)
	w := httptest.NewRecorder()
	sess, err := mgr.StartOrRestore(context.Background(), w, requestWithCookie("sid", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	oldID := sess.ID
	sess.UID = "u1"
	sess.IsAdmin = true

	rotateW := httptest.NewRecorder()
	if err := mgr.RotateID(context.Background(), rotateW, sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == oldID {
		t.Fatal("session id must change on rotation")
	}
	if _, err := store.Get(context.Background(), oldID); err != ErrNotFound {
		t.Fatalf("old session document must be gone, got %v", err)
	}
	rotated, err := store.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rotated.UID != "u1" || !rotated.IsAdmin {
		t.Fatalf("rotated session lost state: %+v", rotated)
	}
	if cookie := sessionCookie(t, rotateW, "sid"); cookie.Value != sess.ID {
		t.Fatalf("cookie not updated to rotated id")
	}
}

func TestFlashIsConsumedOnce(t *testing.T) {
	t.Parallel()

	mgr, store := testManager(t)
	sess, err := mgr.StartOrRestore(context.Background(), httptest.NewRecorder(), requestWithCookie("sid", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mgr.Flash(context.Background(), sess, FlashData{Message: "check your input", Fields: map[string]string{"email": "a@b.c"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := mgr.ConsumeFlash(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data == nil || data.Message != "check your input" || data.Fields["email"] != "a@b.c" {
		t.Fatalf("unexpected flash data: %+v", data)
	}

	again, err := mgr.ConsumeFlash(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != nil {
		t.Fatal("flash must be cleared after one read")
	}
	persisted, err := store.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if persisted.Flash != nil {
		t.Fatal("cleared flash must be persisted")
	}
}

func TestExpiredSessionIsReplaced(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	mgr, err := NewManager(store, config.SessionConfig{CookieName: "sid", TTL: time.Minute})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expired := &Session{ID: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := store.Save(context.Background(), expired); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess, err := mgr.StartOrRestore(context.Background(), httptest.NewRecorder(), requestWithCookie("sid", "old"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == "old" {
		t.Fatal("expired session must not be restored")
	}
}
