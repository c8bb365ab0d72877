package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/users"
)

// Known status values. The backend accepts any non-empty status string;
// these name the set the admin UI offers.
const (
	StatusPending   = "pending"
	StatusFulfilled = "fulfilled"
	StatusCancelled = "cancelled"
)

// Order is a settled snapshot of a cart and the buying user at checkout
// time. The user snapshot never carries a password hash.
type Order struct {
	ID        string     `json:"id"`
	User      users.User `json:"userData"`
	Cart      cart.Cart  `json:"productData"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"date"`
}
