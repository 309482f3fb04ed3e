package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-kco/internal/analytics"
	"github.com/noah-isme/backend-kco/internal/kco"
)

// TaskTypeNewsletterSignup is the queue task type for newsletter
// opt-ins collected through the checkout widget.
const TaskTypeNewsletterSignup = "kco:newsletter:signup"

// ErrAmountMismatch is returned by the amount guard when the order
// totals do not reconcile with the order lines.
var ErrAmountMismatch = errors.New("order amount does not match order lines")

// AmountGuard rejects payloads whose order amount diverges from the
// line sum. The check only applies when a shipping selection is part
// of the lines; in full-option-list mode shipping is intentionally
// missing from the lines and the totals cannot reconcile against them.
func AmountGuard() Plugin {
	return Plugin{
		Name: "amountGuard",
		BeforeCreate: func(_ context.Context, order *kco.Order) error {
			if order.SelectedShippingOption == nil {
				return nil
			}
			var amount, tax int64
			for _, line := range order.OrderLines {
				amount += line.TotalAmount
				tax += line.TotalTaxAmount
			}
			if amount != order.OrderAmount || tax != order.OrderTaxAmount {
				return fmt.Errorf("%w: amount %d vs %d, tax %d vs %d",
					ErrAmountMismatch, order.OrderAmount, amount, order.OrderTaxAmount, tax)
			}
			return nil
		},
	}
}

// OrderIDStore is the slice of the selection store the order id keeper
// needs.
type OrderIDStore interface {
	SetOrderID(ctx context.Context, storeCode, id string) error
	ClearOrderID(ctx context.Context, storeCode string) error
}

// OrderIDKeeper persists the provider order id after creation so a
// returning shopper resumes the same provider session, and clears it
// once the order is confirmed.
func OrderIDKeeper(store OrderIDStore) Plugin {
	return Plugin{
		Name: "orderId",
		AfterCreate: func(ctx context.Context, created Created) error {
			return store.SetOrderID(ctx, created.StoreCode, created.OrderID)
		},
		OnConfirmation: func(ctx context.Context, confirmed Confirmed) error {
			return store.ClearOrderID(ctx, confirmed.StoreCode)
		},
	}
}

// PurchaseTracker reports confirmed orders to the analytics queue.
func PurchaseTracker(dispatcher *analytics.Dispatcher, affiliation string) Plugin {
	return Plugin{
		Name: "purchaseTracker",
		OnConfirmation: func(ctx context.Context, confirmed Confirmed) error {
			event := analytics.PurchaseFromOrder(confirmed.OrderID, confirmed.Order, affiliation)
			return dispatcher.TrackPurchase(ctx, event)
		},
	}
}

// NewsletterSignup queues a signup task when the merchant data carries
// a newsletter opt-in with an email address.
func NewsletterSignup(tasks analytics.Enqueuer) Plugin {
	return Plugin{
		Name: "newsletter",
		OnConfirmation: func(ctx context.Context, confirmed Confirmed) error {
			var data struct {
				Newsletter bool   `json:"newsletter"`
				Email      string `json:"email"`
			}
			if err := json.Unmarshal([]byte(confirmed.Order.MerchantData), &data); err != nil {
				return nil
			}
			if !data.Newsletter || data.Email == "" {
				return nil
			}
			payload, err := json.Marshal(map[string]string{"email": data.Email, "order_id": confirmed.OrderID})
			if err != nil {
				return err
			}
			_, err = tasks.EnqueueContext(ctx, asynq.NewTask(TaskTypeNewsletterSignup, payload), asynq.MaxRetry(5))
			return err
		},
	}
}
