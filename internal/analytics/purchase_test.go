package analytics_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kco/internal/analytics"
	"github.com/noah-isme/backend-kco/internal/kco"
)

func confirmedOrder() kco.Order {
	option := kco.ShippingOption{ID: "ups_ground", Price: 550}
	return kco.Order{
		OrderAmount:            5900,
		OrderTaxAmount:         950,
		SelectedShippingOption: &option,
		OrderLines: []kco.OrderLine{
			{Type: kco.LineTypePhysical, Name: "Shirt", Reference: "SH-1", UnitPrice: 2675, Quantity: 2, TotalAmount: 5350},
			{Type: kco.LineTypeShippingFee, Name: "UPS - Ground", UnitPrice: 550, Quantity: 1, TotalAmount: 550},
		},
	}
}

func TestPurchaseFromOrder(t *testing.T) {
	t.Parallel()

	event := analytics.PurchaseFromOrder("kco-1", confirmedOrder(), "Example Shop")
	require.Equal(t, "kco-1", event.TransactionID)
	require.Equal(t, "Example Shop", event.Affiliation)
	require.Equal(t, 59.0, event.Revenue)
	require.Equal(t, 9.5, event.Tax)
	require.Equal(t, 5.5, event.Shipping)
	require.Len(t, event.Products, 1)
	require.Equal(t, "SH-1", event.Products[0].SKU)
	require.Equal(t, 26.75, event.Products[0].Price)
	require.Equal(t, int64(2), event.Products[0].Quantity)
}

func TestPurchaseWithoutSelectionHasZeroShipping(t *testing.T) {
	t.Parallel()

	order := confirmedOrder()
	order.SelectedShippingOption = nil
	event := analytics.PurchaseFromOrder("kco-1", order, "")
	require.Zero(t, event.Shipping)
}

type recordingEnqueuer struct {
	tasks []*asynq.Task
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestTrackPurchaseEnqueues(t *testing.T) {
	t.Parallel()

	tasks := &recordingEnqueuer{}
	dispatcher := &analytics.Dispatcher{Tasks: tasks, Queue: "analytics"}
	require.NoError(t, dispatcher.TrackPurchase(context.Background(), analytics.PurchaseFromOrder("kco-1", confirmedOrder(), "")))
	require.Len(t, tasks.tasks, 1)
	require.Equal(t, analytics.TaskTypePurchase, tasks.tasks[0].Type())

	var event analytics.Purchase
	require.NoError(t, json.Unmarshal(tasks.tasks[0].Payload(), &event))
	require.Equal(t, "kco-1", event.TransactionID)
}

func TestTrackPurchaseWithoutClient(t *testing.T) {
	t.Parallel()

	var dispatcher analytics.Dispatcher
	require.Error(t, dispatcher.TrackPurchase(context.Background(), analytics.Purchase{}))
}
