package square

import (
	"strconv"
	"strings"

	sq "github.com/square/square-go-sdk"
	sqcheckout "github.com/square/square-go-sdk/checkout"
)

// PaymentLinkLineItem is one purchasable line on the hosted checkout page.
type PaymentLinkLineItem struct {
	Name        string
	Quantity    int
	AmountCents int64
	Currency    string
}

// PaymentLinkParams contains the fields required to create a hosted payment link.
type PaymentLinkParams struct {
	LocationID     string
	RedirectURL    string
	Description    string
	LineItems      []PaymentLinkLineItem
	IdempotencyKey string
}

func (p PaymentLinkParams) toSquareRequest(idempotencyKey string) *sqcheckout.CreatePaymentLinkRequest {
	req := &sqcheckout.CreatePaymentLinkRequest{
		IdempotencyKey: ptrString(idempotencyKey),
		Order: &sq.Order{
			LocationID: p.LocationID,
			LineItems:  p.squareLineItems(),
		},
	}
	if trimmed := strings.TrimSpace(p.Description); trimmed != "" {
		req.Description = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.RedirectURL); trimmed != "" {
		req.CheckoutOptions = &sq.CheckoutOptions{
			RedirectURL: ptrString(trimmed),
		}
	}
	return req
}

func (p PaymentLinkParams) squareLineItems() []*sq.OrderLineItem {
	items := make([]*sq.OrderLineItem, 0, len(p.LineItems))
	for _, line := range p.LineItems {
		items = append(items, &sq.OrderLineItem{
			Name:           ptrString(line.Name),
			Quantity:       strconv.Itoa(line.Quantity),
			BasePriceMoney: moneyPtr(line.AmountCents, line.Currency),
		})
	}
	return items
}

func ptrString(value string) *string {
	return &value
}

func moneyPtr(amount int64, currency string) *sq.Money {
	cur := sq.Currency(strings.ToUpper(strings.TrimSpace(currency)))
	if cur == "" {
		cur = sq.CurrencyUsd
	}
	return &sq.Money{
		Amount:   &amount,
		Currency: &cur,
	}
}
