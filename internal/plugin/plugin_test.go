package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kco/internal/kco"
	"github.com/noah-isme/backend-kco/internal/plugin"
)

func TestBeforeCreateRunsInOrderAndShortCircuits(t *testing.T) {
	t.Parallel()

	var ran []string
	boom := errors.New("boom")
	registry := plugin.NewRegistry(
		plugin.Plugin{Name: "first", BeforeCreate: func(_ context.Context, order *kco.Order) error {
			ran = append(ran, "first")
			order.MerchantData = `{"touched":true}`
			return nil
		}},
		plugin.Plugin{Name: "second", BeforeCreate: func(context.Context, *kco.Order) error {
			ran = append(ran, "second")
			return boom
		}},
		plugin.Plugin{Name: "third", BeforeCreate: func(context.Context, *kco.Order) error {
			ran = append(ran, "third")
			return nil
		}},
	)

	order := kco.Order{}
	err := registry.BeforeCreate(context.Background(), &order)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "plugin second")
	require.Equal(t, []string{"first", "second"}, ran)
	require.Equal(t, `{"touched":true}`, order.MerchantData)
}

func TestOnConfirmationRunsAllAndJoinsErrors(t *testing.T) {
	t.Parallel()

	first := errors.New("first failed")
	var reached bool
	registry := plugin.NewRegistry(
		plugin.Plugin{Name: "a", OnConfirmation: func(context.Context, plugin.Confirmed) error { return first }},
		plugin.Plugin{Name: "b", OnConfirmation: func(context.Context, plugin.Confirmed) error {
			reached = true
			return nil
		}},
	)

	err := registry.OnConfirmation(context.Background(), plugin.Confirmed{})
	require.ErrorIs(t, err, first)
	require.True(t, reached)
}

func TestAmountGuard(t *testing.T) {
	t.Parallel()

	guard := plugin.AmountGuard()
	option := kco.ShippingOption{ID: "ups_ground", Price: 550, TaxAmount: 50}
	order := kco.Order{
		OrderAmount:            1550,
		OrderTaxAmount:         250,
		SelectedShippingOption: &option,
		OrderLines: []kco.OrderLine{
			{TotalAmount: 1000, TotalTaxAmount: 200},
			{TotalAmount: 550, TotalTaxAmount: 50},
		},
	}
	require.NoError(t, guard.BeforeCreate(context.Background(), &order))

	order.OrderAmount = 1500
	err := guard.BeforeCreate(context.Background(), &order)
	require.ErrorIs(t, err, plugin.ErrAmountMismatch)

	// Full-option-list payloads carry no selection and are exempt.
	order.SelectedShippingOption = nil
	require.NoError(t, guard.BeforeCreate(context.Background(), &order))
}

type recordingStore struct {
	saved   map[string]string
	cleared []string
}

func (r *recordingStore) SetOrderID(_ context.Context, storeCode, id string) error {
	if r.saved == nil {
		r.saved = map[string]string{}
	}
	r.saved[storeCode] = id
	return nil
}

func (r *recordingStore) ClearOrderID(_ context.Context, storeCode string) error {
	r.cleared = append(r.cleared, storeCode)
	return nil
}

func TestOrderIDKeeper(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	keeper := plugin.OrderIDKeeper(store)

	require.NoError(t, keeper.AfterCreate(context.Background(), plugin.Created{StoreCode: "de", OrderID: "kco-1"}))
	require.Equal(t, "kco-1", store.saved["de"])

	require.NoError(t, keeper.OnConfirmation(context.Background(), plugin.Confirmed{StoreCode: "de", OrderID: "kco-1"}))
	require.Equal(t, []string{"de"}, store.cleared)
}

type recordingEnqueuer struct {
	tasks []*asynq.Task
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestNewsletterSignup(t *testing.T) {
	t.Parallel()

	tasks := &recordingEnqueuer{}
	signup := plugin.NewsletterSignup(tasks)

	optedIn := plugin.Confirmed{
		OrderID: "kco-1",
		Order:   kco.Order{MerchantData: `{"newsletter":true,"email":"buyer@example.com"}`},
	}
	require.NoError(t, signup.OnConfirmation(context.Background(), optedIn))
	require.Len(t, tasks.tasks, 1)
	require.Equal(t, plugin.TaskTypeNewsletterSignup, tasks.tasks[0].Type())

	optedOut := plugin.Confirmed{Order: kco.Order{MerchantData: `{"newsletter":false}`}}
	require.NoError(t, signup.OnConfirmation(context.Background(), optedOut))
	require.Len(t, tasks.tasks, 1)
}
