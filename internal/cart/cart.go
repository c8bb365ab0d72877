package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/products"
)

// ErrItemNotFound reports an UpdateItem call naming a product id that is not
// in the cart.
var ErrItemNotFound = errors.New("cart item not found")

// CatalogLookup is the slice of the catalog the cart needs for price
// reconciliation.
type CatalogLookup interface {
	FindMultiple(ctx context.Context, ids []string) ([]products.Product, error)
}

// Item is one cart line: a product snapshot, a quantity, and the line total.
// The product copy can go stale until the next ReconcilePrices pass.
type Item struct {
	Product    products.Product `json:"product"`
	Quantity   int              `json:"quantity"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
}

// Cart is a session-scoped shopping cart. It is a pure in-memory entity;
// persistence happens through the session document that embeds it.
type Cart struct {
	Items         []Item          `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Items: []Item{}}
}

// AddItem puts one unit of the product into the cart. An existing line for
// the same product id gets its quantity bumped and the unit price added to
// the line total; otherwise a new line is appended. The cart totals always
// grow by one unit and one unit price.
func (c *Cart) AddItem(product products.Product) {
	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID {
			c.Items[i].Quantity++
			c.Items[i].TotalPrice = c.Items[i].TotalPrice.Add(product.Price)
			c.TotalQuantity++
			c.TotalPrice = c.TotalPrice.Add(product.Price)
			return
		}
	}

	c.Items = append(c.Items, Item{
		Product:    product,
		Quantity:   1,
		TotalPrice: product.Price,
	})
	c.TotalQuantity++
	c.TotalPrice = c.TotalPrice.Add(product.Price)
}

// UpdateItem sets the quantity of an existing line. A positive quantity
// rewrites the line total as quantity times the snapshotted unit price and
// adjusts the cart totals by the delta; zero or negative removes the line
// and subtracts its quantity and total. The returned value is the new line
// total (zero after removal).
func (c *Cart) UpdateItem(productID string, newQuantity int) (decimal.Decimal, error) {
	for i := range c.Items {
		item := c.Items[i]
		if item.Product.ID != productID {
			continue
		}

		if newQuantity > 0 {
			quantityChange := newQuantity - item.Quantity
			lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(newQuantity)))
			c.Items[i].Quantity = newQuantity
			c.Items[i].TotalPrice = lineTotal
			c.TotalQuantity += quantityChange
			c.TotalPrice = c.TotalPrice.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(quantityChange))))
			return lineTotal, nil
		}

		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		c.TotalQuantity -= item.Quantity
		c.TotalPrice = c.TotalPrice.Sub(item.TotalPrice)
		return decimal.Zero, nil
	}

	return decimal.Zero, ErrItemNotFound
}

// ReconcilePrices refreshes every line against the current catalog in one
// batched lookup. Lines whose product no longer exists are pruned; surviving
// lines get the fresh product snapshot and a recomputed line total. Cart
// totals are rebuilt from scratch afterwards, so the pass is idempotent when
// the catalog is unchanged.
func (c *Cart) ReconcilePrices(ctx context.Context, lookup CatalogLookup) error {
	if len(c.Items) == 0 {
		return nil
	}

	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.Product.ID)
	}

	found, err := lookup.FindMultiple(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]products.Product, len(found))
	for _, product := range found {
		byID[product.ID] = product
	}

	kept := c.Items[:0]
	for _, item := range c.Items {
		product, ok := byID[item.Product.ID]
		if !ok {
			continue
		}
		item.Product = product
		item.TotalPrice = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		kept = append(kept, item)
	}
	c.Items = kept

	c.TotalQuantity = 0
	c.TotalPrice = decimal.Zero
	for _, item := range c.Items {
		c.TotalQuantity += item.Quantity
		c.TotalPrice = c.TotalPrice.Add(item.TotalPrice)
	}
	return nil
}
