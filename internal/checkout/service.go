package checkout

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kco/internal/cart"
	"github.com/noah-isme/backend-kco/internal/common"
	"github.com/noah-isme/backend-kco/internal/kco"
	"github.com/noah-isme/backend-kco/internal/obs"
	"github.com/noah-isme/backend-kco/internal/payment"
	"github.com/noah-isme/backend-kco/internal/plugin"
	"github.com/noah-isme/backend-kco/internal/selection"
	"github.com/noah-isme/backend-kco/internal/store"
)

// StateInput is the checkout-session slice of the request: the
// shopper's prior choices as tracked by the storefront.
type StateInput struct {
	PurchaseCountry    string         `json:"purchase_country"`
	ShippingMethodCode string         `json:"shipping_method"`
	OrderID            string         `json:"order_id"`
	ShippingOptions    bool           `json:"shipping_options"`
	MerchantData       map[string]any `json:"merchant_data"`
}

// Input is the full payload the storefront posts to derive and submit
// an order.
type Input struct {
	StoreCode       string               `json:"store_code"`
	State           StateInput           `json:"state"`
	Cart            cart.Snapshot        `json:"cart"`
	ShippingMethods []kco.ShippingMethod `json:"shipping_methods"`
}

// Output is returned to the storefront after a create or update.
type Output struct {
	OrderID      string    `json:"orderId"`
	HTMLSnippet  string    `json:"htmlSnippet,omitempty"`
	Status       string    `json:"status,omitempty"`
	FreeShipping bool      `json:"freeShipping"`
	Order        kco.Order `json:"order"`
}

// Service derives order payloads and drives them through the plugin
// lifecycle and the provider API.
type Service struct {
	Assembler  *kco.Assembler
	Cart       *cart.Resolver
	Stores     *store.Registry
	Plugins    *plugin.Registry
	Provider   payment.Provider
	Selections *selection.Store
	Metrics    *obs.CheckoutMetrics
	Logger     zerolog.Logger
}

// Build derives the order payload without touching the provider. Used
// directly by widget refreshes and as the first half of Submit.
func (s *Service) Build(ctx context.Context, in Input) (kco.Order, store.View, bool, error) {
	if s == nil || s.Assembler == nil || s.Cart == nil || s.Stores == nil {
		return kco.Order{}, store.View{}, false, errors.New("checkout service not configured")
	}
	view, ok := s.Stores.Resolve(in.StoreCode)
	if !ok {
		return kco.Order{}, store.View{}, false, common.NewAppError("STORE_UNKNOWN", "no store view configured", http.StatusInternalServerError, nil)
	}
	items, totals, err := s.Cart.Resolve(in.Cart)
	if err != nil {
		return kco.Order{}, view, false, preconditionError(err)
	}

	state := kco.State{
		PurchaseCountry:    in.State.PurchaseCountry,
		ShippingMethodCode: in.State.ShippingMethodCode,
		OrderID:            in.State.OrderID,
		ShippingOptions:    in.State.ShippingOptions,
		MerchantData:       in.State.MerchantData,
	}
	if state.OrderID == "" && s.Selections != nil {
		// A returning shopper resumes the provider session recorded by
		// the order-id plugin.
		if id, err := s.Selections.OrderID(ctx, view.Code); err == nil {
			state.OrderID = id
		}
	}

	order := s.Assembler.BuildOrder(ctx, state, items, in.ShippingMethods, totals, view)
	free := kco.FreeShipping(totals)
	if s.Metrics != nil {
		s.Metrics.OrdersBuilt.WithLabelValues(resolutionLabel(order)).Inc()
		if free {
			s.Metrics.FreeShipping.Inc()
		}
	}
	return order, view, free, nil
}

// Submit builds the order, runs the BeforeCreate chain and creates or
// updates the checkout session at the provider.
func (s *Service) Submit(ctx context.Context, in Input) (Output, error) {
	order, view, free, err := s.Build(ctx, in)
	if err != nil {
		return Output{}, err
	}
	if s.Provider == nil {
		return Output{}, errors.New("checkout provider not configured")
	}
	if err := s.Plugins.BeforeCreate(ctx, &order); err != nil {
		return Output{}, common.NewAppError("ORDER_REJECTED", "order rejected before submission", http.StatusUnprocessableEntity, err)
	}

	operation := "create"
	var created payment.CreatedOrder
	if order.OrderID != "" {
		operation = "update"
		created, err = s.Provider.UpdateOrder(ctx, order.OrderID, order)
	} else {
		created, err = s.Provider.CreateOrder(ctx, order)
	}
	s.countProvider(operation, err)
	if err != nil {
		return Output{}, err
	}

	if hookErr := s.Plugins.AfterCreate(ctx, plugin.Created{
		StoreCode: view.Code,
		OrderID:   created.OrderID,
		Order:     order,
	}); hookErr != nil {
		s.Logger.Error().Err(hookErr).Str("order_id", created.OrderID).Msg("after-create plugins")
	}

	return Output{
		OrderID:      created.OrderID,
		HTMLSnippet:  created.HTMLSnippet,
		Status:       created.Status,
		FreeShipping: free,
		Order:        order,
	}, nil
}

// Confirm fetches the completed order from the provider and fans the
// confirmation out to the plugins.
func (s *Service) Confirm(ctx context.Context, storeCode, orderID string) (Output, error) {
	if s == nil || s.Provider == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	view, _ := s.Stores.Resolve(storeCode)
	created, err := s.Provider.FetchOrder(ctx, orderID)
	s.countProvider("fetch", err)
	if err != nil {
		return Output{}, err
	}

	if hookErr := s.Plugins.OnConfirmation(ctx, plugin.Confirmed{
		StoreCode: view.Code,
		OrderID:   created.OrderID,
		Order:     created.Order,
	}); hookErr != nil {
		s.Logger.Error().Err(hookErr).Str("order_id", created.OrderID).Msg("confirmation plugins")
	}

	return Output{
		OrderID:     created.OrderID,
		HTMLSnippet: created.HTMLSnippet,
		Status:      created.Status,
		Order:       created.Order,
	}, nil
}

// SelectShipping records the shipping method the shopper picked inside
// the provider widget. This is the single write path for the persisted
// selection the assembler later reads.
func (s *Service) SelectShipping(ctx context.Context, storeCode, methodID string) error {
	if s == nil || s.Selections == nil {
		return errors.New("selection store not configured")
	}
	if methodID == "" {
		return common.NewAppError("BAD_REQUEST", "shipping method id is required", http.StatusBadRequest, nil)
	}
	view, _ := s.Stores.Resolve(storeCode)
	return s.Selections.SetShippingMethodID(ctx, view.Code, methodID)
}

func (s *Service) countProvider(operation string, err error) {
	if s.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.Metrics.ProviderRequests.WithLabelValues(operation, outcome).Inc()
}

func resolutionLabel(order kco.Order) string {
	switch {
	case len(order.ShippingOptions) > 0:
		return "option_list"
	case order.SelectedShippingOption != nil:
		return "fallback"
	case hasShippingLine(order.OrderLines):
		return "explicit"
	default:
		return "none"
	}
}

func hasShippingLine(lines []kco.OrderLine) bool {
	for _, line := range lines {
		if line.Type == kco.LineTypeShippingFee {
			return true
		}
	}
	return false
}

func preconditionError(err error) error {
	switch {
	case errors.Is(err, cart.ErrTotalsNotReady):
		return common.NewAppError("TOTALS_NOT_READY", "cart totals are not computed yet", http.StatusConflict, err)
	case errors.Is(err, cart.ErrCartOutOfSync):
		return common.NewAppError("CART_OUT_OF_SYNC", "cart items do not match totals", http.StatusConflict, err)
	default:
		return common.NewAppError("BAD_REQUEST", "invalid cart snapshot", http.StatusBadRequest, err)
	}
}
