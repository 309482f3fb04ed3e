// Package analytics turns confirmed checkout orders into purchase
// tracking events. Payload construction is synchronous and pure; the
// actual delivery is queued so a slow analytics backend can never
// stall a confirmation page.
package analytics

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-kco/internal/kco"
)

// TaskTypePurchase is the queue task type carrying purchase events.
const TaskTypePurchase = "kco:analytics:purchase"

// PurchaseProduct is one purchased product in the tracking payload.
type PurchaseProduct struct {
	Name     string  `json:"name"`
	ID       string  `json:"id"`
	SKU      string  `json:"sku"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// Purchase is the ecommerce purchase event, amounts back-converted
// from minor units into decimal currency for the tracking backend.
type Purchase struct {
	TransactionID string            `json:"transaction_id"`
	Affiliation   string            `json:"affiliation"`
	Revenue       float64           `json:"revenue"`
	Tax           float64           `json:"tax"`
	Shipping      float64           `json:"shipping"`
	Products      []PurchaseProduct `json:"products"`
}

// PurchaseFromOrder builds the tracking event for a confirmed order.
// Shipping-fee lines are reported through the shipping field, never as
// products.
func PurchaseFromOrder(orderID string, order kco.Order, affiliation string) Purchase {
	event := Purchase{
		TransactionID: orderID,
		Affiliation:   affiliation,
		Revenue:       fromMinor(order.OrderAmount),
		Tax:           fromMinor(order.OrderTaxAmount),
	}
	if order.SelectedShippingOption != nil {
		event.Shipping = fromMinor(order.SelectedShippingOption.Price)
	}
	for _, line := range order.OrderLines {
		if line.Type == kco.LineTypeShippingFee {
			continue
		}
		event.Products = append(event.Products, PurchaseProduct{
			Name:     line.Name,
			ID:       line.Reference,
			SKU:      line.Reference,
			Price:    fromMinor(line.UnitPrice),
			Quantity: line.Quantity,
		})
	}
	return event
}

func fromMinor(amount int64) float64 {
	return float64(amount) / 100
}

// Enqueuer is the slice of the asynq client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher queues purchase events for asynchronous delivery.
type Dispatcher struct {
	Tasks Enqueuer
	Queue string
}

// TrackPurchase serialises the event and enqueues it.
func (d *Dispatcher) TrackPurchase(ctx context.Context, event Purchase) error {
	if d == nil || d.Tasks == nil {
		return errors.New("analytics: task client not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	opts := []asynq.Option{asynq.MaxRetry(5)}
	if d.Queue != "" {
		opts = append(opts, asynq.Queue(d.Queue))
	}
	_, err = d.Tasks.EnqueueContext(ctx, asynq.NewTask(TaskTypePurchase, payload), opts...)
	return err
}
