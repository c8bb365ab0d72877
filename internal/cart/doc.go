package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Doc is the BSON form of a cart, embedded inside session and order
// documents. Money fields are stored as fixed two-decimal strings.
type Doc struct {
	Items         []ItemDoc `bson:"items"`
	TotalQuantity int       `bson:"totalQuantity"`
	TotalPrice    string    `bson:"totalPrice"`
}

type ItemDoc struct {
	Product    ProductDoc `bson:"product"`
	Quantity   int        `bson:"quantity"`
	TotalPrice string     `bson:"totalPrice"`
}

// ProductDoc is the embedded product snapshot. It keeps the catalog id as a
// plain hex string so a pruned catalog record cannot break decoding.
type ProductDoc struct {
	ID          string `bson:"id"`
	Title       string `bson:"title"`
	Summary     string `bson:"summary"`
	Price       string `bson:"price"`
	Description string `bson:"description"`
	Image       string `bson:"image,omitempty"`
}

// ToDoc converts the cart to its persisted form.
func (c *Cart) ToDoc() Doc {
	items := make([]ItemDoc, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, ItemDoc{
			Product: ProductDoc{
				ID:          item.Product.ID,
				Title:       item.Product.Title,
				Summary:     item.Product.Summary,
				Price:       item.Product.Price.StringFixed(2),
				Description: item.Product.Description,
				Image:       item.Product.Image,
			},
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice.StringFixed(2),
		})
	}
	return Doc{
		Items:         items,
		TotalQuantity: c.TotalQuantity,
		TotalPrice:    c.TotalPrice.StringFixed(2),
	}
}

// FromDoc rebuilds a cart from its persisted form.
func FromDoc(doc Doc) (*Cart, error) {
	out := New()
	out.TotalQuantity = doc.TotalQuantity

	total, err := parseMoney(doc.TotalPrice, "cart total")
	if err != nil {
		return nil, err
	}
	out.TotalPrice = total

	for _, item := range doc.Items {
		price, err := parseMoney(item.Product.Price, fmt.Sprintf("product %s price", item.Product.ID))
		if err != nil {
			return nil, err
		}
		lineTotal, err := parseMoney(item.TotalPrice, fmt.Sprintf("product %s line total", item.Product.ID))
		if err != nil {
			return nil, err
		}
		product := products.Product{
			ID:          item.Product.ID,
			Title:       item.Product.Title,
			Summary:     item.Product.Summary,
			Price:       price,
			Description: item.Product.Description,
			Image:       item.Product.Image,
		}
		product.RefreshImageData()
		out.Items = append(out.Items, Item{
			Product:    product,
			Quantity:   item.Quantity,
			TotalPrice: lineTotal,
		})
	}
	return out, nil
}

func parseMoney(value, label string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt "+label)
	}
	return parsed, nil
}
