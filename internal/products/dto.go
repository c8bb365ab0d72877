package products

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is an immutable-per-fetch snapshot of one catalog record. Carts
// hold copies by value, so a Product in a cart can go stale until the next
// price reconciliation.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	ImagePath   string          `json:"imagePath"`
	ImageURL    string          `json:"imageUrl"`
}

// RefreshImageData derives the filesystem path and public URL from the
// stored image filename. Neither derived field is ever persisted.
func (p *Product) RefreshImageData() {
	if p == nil {
		return
	}
	p.ImagePath = "product-data/images/" + p.Image
	p.ImageURL = "/products/assets/images/" + p.Image
}

// ReplaceImage swaps the stored filename and recomputes the derived paths.
func (p *Product) ReplaceImage(filename string) {
	if p == nil {
		return
	}
	p.Image = strings.TrimSpace(filename)
	p.RefreshImageData()
}
