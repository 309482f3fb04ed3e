package kco_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kco/internal/kco"
	"github.com/noah-isme/backend-kco/internal/store"
)

func TestFullOptionListBranch(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{Cfg: kco.Config{ShowShippingOptions: true}}
	totals := kco.CartTotals{
		BaseGrandTotal:        105.50,
		BaseTaxAmount:         21.10,
		BaseShippingInclTax:   5.50,
		BaseShippingTaxAmount: 0.50,
	}
	order := assembler.BuildOrder(t.Context(), kco.State{ShippingOptions: true}, nil, candidateMethods(), totals, testView())

	require.Equal(t, int64(10000), order.OrderAmount)
	require.Equal(t, int64(2060), order.OrderTaxAmount)
	require.Len(t, order.ShippingOptions, 2)
	require.True(t, order.ShippingOptions[0].Preselected)
	require.False(t, order.ShippingOptions[1].Preselected)
	require.Nil(t, order.SelectedShippingOption)
	// Shipping is the provider's problem in this mode: no fee line.
	for _, line := range order.OrderLines {
		require.NotEqual(t, kco.LineTypeShippingFee, line.Type)
	}
}

func TestFullOptionListWinsOverExplicitSelection(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{Cfg: kco.Config{ShowShippingOptions: true}}
	state := kco.State{ShippingOptions: true, ShippingMethodCode: "ground"}
	order := assembler.BuildOrder(t.Context(), state, nil, candidateMethods(), kco.CartTotals{BaseGrandTotal: 100, BaseShippingInclTax: 5.50}, testView())

	require.Len(t, order.ShippingOptions, 2)
	require.Empty(t, order.OrderLines)
	require.Equal(t, int64(9450), order.OrderAmount)
}

func TestExplicitSelectionUsesCartShippingTotals(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{}
	totals := kco.CartTotals{
		BaseGrandTotal:    104.00,
		BaseTaxAmount:     20.80,
		ShippingInclTax:   4.00, // promo price, cheaper than the quote
		ShippingAmount:    3.20,
		ShippingTaxAmount: 0.80,
	}
	order := assembler.BuildOrder(t.Context(), kco.State{ShippingMethodCode: "ground"}, nil, candidateMethods(), totals, testView())

	require.Equal(t, int64(10400), order.OrderAmount)
	require.Equal(t, int64(2080), order.OrderTaxAmount)
	require.Len(t, order.OrderLines, 1)
	line := order.OrderLines[0]
	require.Equal(t, kco.LineTypeShippingFee, line.Type)
	require.Equal(t, "UPS - Ground", line.Name)
	// Cart figures win over the raw quote (550).
	require.Equal(t, int64(400), line.TotalAmount)
	require.Equal(t, int64(400), line.UnitPrice)
	require.Equal(t, int64(2500), line.TaxRate)
	// 4.00 / (1 + 1/0.25) = 0.80 embedded tax.
	require.Equal(t, int64(80), line.TotalTaxAmount)
	require.Nil(t, order.SelectedShippingOption)
}

func TestExplicitSelectionZeroShippingAmountKeepsZeroRate(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{}
	totals := kco.CartTotals{BaseGrandTotal: 100, ShippingInclTax: 5, ShippingAmount: 0, ShippingTaxAmount: 0}
	order := assembler.BuildOrder(t.Context(), kco.State{ShippingMethodCode: "ground"}, nil, candidateMethods(), totals, testView())

	line := order.OrderLines[0]
	require.Equal(t, int64(0), line.TaxRate)
	require.Equal(t, int64(0), line.TotalTaxAmount)
}

func TestFallbackPrefersPersistedSelection(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{Selections: memorySelection{id: "dhl_express"}}
	order := assembler.BuildOrder(t.Context(), kco.State{}, nil, candidateMethods(), kco.CartTotals{}, testView())

	require.NotNil(t, order.SelectedShippingOption)
	require.Equal(t, "dhl_express", order.SelectedShippingOption.ID)
	require.False(t, order.SelectedShippingOption.Preselected)
}

func TestFallbackFirstCandidateWhenPersistedUnknown(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{Selections: memorySelection{id: "gone_method"}}
	order := assembler.BuildOrder(t.Context(), kco.State{}, nil, candidateMethods(), kco.CartTotals{}, testView())

	require.NotNil(t, order.SelectedShippingOption)
	require.Equal(t, "ups_ground", order.SelectedShippingOption.ID)
}

func TestFallbackDegradesWhenSelectionStoreFails(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{Selections: memorySelection{err: errSelectionDown}}
	order := assembler.BuildOrder(t.Context(), kco.State{}, nil, candidateMethods(), kco.CartTotals{}, testView())

	require.NotNil(t, order.SelectedShippingOption)
	require.Equal(t, "ups_ground", order.SelectedShippingOption.ID)
}

func TestFallbackNoCandidates(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{}
	totals := kco.CartTotals{BaseGrandTotal: 45, BaseTaxAmount: 9}
	order := assembler.BuildOrder(t.Context(), kco.State{}, nil, nil, totals, testView())

	require.Nil(t, order.SelectedShippingOption)
	require.Empty(t, order.OrderLines)
	// Without a resolvable selection the cart-level totals stand.
	require.Equal(t, int64(4500), order.OrderAmount)
	require.Equal(t, int64(900), order.OrderTaxAmount)
}

func TestFallbackSumsOrderLines(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{}
	items := []kco.CartLineItem{
		{Name: "Shirt", Qty: 1, PriceInclTax: 30, RowTotalInclTax: 30, TaxAmount: 5, TaxPercent: 20},
		{Name: "Cap", Qty: 2, PriceInclTax: 10, RowTotalInclTax: 20, DiscountAmount: 2, TaxAmount: 3, TaxPercent: 20},
	}
	// Deliberately bogus cart totals: the fallback branch must ignore
	// them and trust the line sum instead.
	totals := kco.CartTotals{BaseGrandTotal: 999, BaseTaxAmount: 999}
	order := assembler.BuildOrder(t.Context(), kco.State{}, items, candidateMethods(), totals, testView())

	var wantAmount, wantTax int64
	for _, line := range order.OrderLines {
		wantAmount += line.TotalAmount
		wantTax += line.TotalTaxAmount
	}
	require.Equal(t, wantAmount, order.OrderAmount)
	require.Equal(t, wantTax, order.OrderTaxAmount)
	require.Equal(t, int64(3000+1800+550), order.OrderAmount)
	require.Equal(t, int64(500+300+50), order.OrderTaxAmount)
}

func TestPurchaseCountryFallbacks(t *testing.T) {
	t.Parallel()

	view := testView()
	require.Equal(t, "DE", kco.PurchaseCountry("", view))
	require.Equal(t, "SE", kco.PurchaseCountry("SE", view))
	// Not in the allowed shipping countries.
	require.Equal(t, "DE", kco.PurchaseCountry("xx", view))
	// Not two letters.
	require.Equal(t, "DE", kco.PurchaseCountry("usa", view))

	open := store.View{DefaultCountry: "SE"}
	require.Equal(t, "NO", kco.PurchaseCountry("NO", open))
	require.Equal(t, "SE", kco.PurchaseCountry("NOR", open))
}

func TestFreeShipping(t *testing.T) {
	t.Parallel()

	free := kco.CartTotals{TotalSegments: []kco.TotalSegment{{Code: "shipping", Value: "0"}}}
	require.True(t, kco.FreeShipping(free))

	paid := kco.CartTotals{TotalSegments: []kco.TotalSegment{{Code: "shipping", Value: "4.99"}}}
	require.False(t, kco.FreeShipping(paid))

	none := kco.CartTotals{TotalSegments: []kco.TotalSegment{{Code: "subtotal", Value: "0"}}}
	require.False(t, kco.FreeShipping(none))
}

func TestMerchantDataAndOrderID(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{}
	state := kco.State{
		OrderID:      "kco-123",
		MerchantData: map[string]any{"newsletter": true},
	}
	order := assembler.BuildOrder(t.Context(), state, nil, nil, kco.CartTotals{}, testView())

	require.Equal(t, "kco-123", order.OrderID)
	require.JSONEq(t, `{"newsletter":true}`, order.MerchantData)

	empty := assembler.BuildOrder(t.Context(), kco.State{}, nil, nil, kco.CartTotals{}, testView())
	require.Equal(t, "{}", empty.MerchantData)
}

func TestEndToEndCheckoutScenario(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{}
	items := []kco.CartLineItem{{
		Name:            "Notebook",
		Qty:             1,
		PriceInclTax:    10.00,
		RowTotalInclTax: 10.00,
		DiscountAmount:  1.00,
		TaxAmount:       1.50,
		TaxPercent:      15,
	}}
	methods := []kco.ShippingMethod{{
		CarrierCode:  "flat",
		MethodCode:   "rate",
		CarrierTitle: "Flat",
		MethodTitle:  "Rate",
		PriceInclTax: 0.50,
		PriceExclTax: 0.45,
	}}
	order := assembler.BuildOrder(t.Context(), kco.State{}, items, methods, kco.CartTotals{}, testView())

	require.Len(t, order.OrderLines, 2)
	require.Equal(t, int64(900), order.OrderLines[0].TotalAmount)
	require.Equal(t, int64(50), order.OrderLines[1].TotalAmount)
	require.Equal(t, int64(5), order.OrderLines[1].TotalTaxAmount)
	require.Equal(t, int64(950), order.OrderAmount)
	require.Equal(t, int64(155), order.OrderTaxAmount)
	require.NotNil(t, order.SelectedShippingOption)
	require.Equal(t, "flat_rate", order.SelectedShippingOption.ID)
}
