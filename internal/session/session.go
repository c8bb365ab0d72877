package session

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
)

// FlashData is one-shot state carried across a redirect: a user-facing
// message plus the non-sensitive form fields to refill.
type FlashData struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Session is one browser's server-side state. UID is empty for anonymous
// visitors; the cart lives here so it survives login and logout.
type Session struct {
	ID        string
	UID       string
	IsAdmin   bool
	Cart      *cart.Cart
	Flash     *FlashData
	CSRFToken string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsAuthenticated reports whether a user is logged in on this session.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UID != ""
}

// IsExpired reports whether the session outlived its cookie.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// ClearAuth logs the user out. The cart and any flash data survive.
func (s *Session) ClearAuth() {
	if s == nil {
		return
	}
	s.UID = ""
	s.IsAdmin = false
}
