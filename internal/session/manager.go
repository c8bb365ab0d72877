package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

// Manager owns the session cookie and the store behind it.
type Manager struct {
	store   Store
	cfg     config.SessionConfig
	nowFn   func() time.Time
	tokenFn func() (string, error)
}

// NewManager wires a session manager over the given store.
func NewManager(store Store, cfg config.SessionConfig) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if cfg.CookieName == "" {
		return nil, fmt.Errorf("session cookie name required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store:   store,
		cfg:     cfg,
		nowFn:   time.Now,
		tokenFn: security.NewToken,
	}, nil
}

// StartOrRestore returns the request's session, creating a fresh one when
// the cookie is absent, stale, or points at a reaped document. New and
// restored sessions alike get the cookie re-set so the expiry slides.
func (m *Manager) StartOrRestore(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(m.cfg.CookieName); err == nil && cookie.Value != "" {
		session, err := m.store.Get(ctx, cookie.Value)
		switch {
		case err == nil && !session.IsExpired():
			m.setCookie(w, session)
			return session, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}
	return m.start(ctx, w)
}

func (m *Manager) start(ctx context.Context, w http.ResponseWriter) (*Session, error) {
	id, err := m.tokenFn()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate session id")
	}
	csrf, err := m.tokenFn()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate csrf token")
	}

	now := m.nowFn()
	session := &Session{
		ID:        id,
		Cart:      cart.New(),
		CSRFToken: csrf,
		ExpiresAt: now.Add(m.cfg.TTL),
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, session); err != nil {
		return nil, err
	}
	m.setCookie(w, session)
	return session, nil
}

// Save writes the session back to the store.
func (m *Manager) Save(ctx context.Context, session *Session) error {
	return m.store.Save(ctx, session)
}

// RotateID moves the session to a fresh identifier, deleting the old
// document and re-setting the cookie. Called on login to defeat fixation.
func (m *Manager) RotateID(ctx context.Context, w http.ResponseWriter, session *Session) error {
	oldID := session.ID
	id, err := m.tokenFn()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate session id")
	}
	session.ID = id
	if err := m.store.Save(ctx, session); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, oldID); err != nil {
		return err
	}
	m.setCookie(w, session)
	return nil
}

// Flash stores one-shot data on the session before the caller redirects.
func (m *Manager) Flash(ctx context.Context, session *Session, data FlashData) error {
	session.Flash = &data
	return m.store.Save(ctx, session)
}

// ConsumeFlash returns and clears the flashed data in one step, so a page
// refresh does not replay it. Returns nil when nothing was flashed.
func (m *Manager) ConsumeFlash(ctx context.Context, session *Session) (*FlashData, error) {
	if session.Flash == nil {
		return nil, nil
	}
	data := session.Flash
	session.Flash = nil
	if err := m.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt) / time.Second),
		HttpOnly: true,
		Secure:   m.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
