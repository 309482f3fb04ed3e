// Package payment talks to the upstream checkout provider. The order
// payload itself is derived elsewhere; this package only moves it over
// the wire and hands back what the provider returned.
package payment

import (
	"context"

	"github.com/noah-isme/backend-kco/internal/kco"
)

// CreatedOrder is the provider's view of a checkout order: its id, the
// embeddable widget snippet and the order payload as the provider
// echoed it back.
type CreatedOrder struct {
	OrderID     string
	HTMLSnippet string
	Status      string
	Order       kco.Order
}

// Provider abstracts the checkout provider API.
type Provider interface {
	CreateOrder(ctx context.Context, order kco.Order) (CreatedOrder, error)
	UpdateOrder(ctx context.Context, orderID string, order kco.Order) (CreatedOrder, error)
	FetchOrder(ctx context.Context, orderID string) (CreatedOrder, error)
}
