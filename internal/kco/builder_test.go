package kco_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kco/internal/kco"
)

func TestBuildShippingOption(t *testing.T) {
	t.Parallel()

	method := kco.ShippingMethod{
		CarrierCode:  "ups",
		MethodCode:   "ground",
		CarrierTitle: "UPS",
		MethodTitle:  "Ground",
		PriceInclTax: 5.50,
		PriceExclTax: 5.00,
	}
	option := kco.BuildShippingOption(method, true)
	require.Equal(t, "ups_ground", option.ID)
	require.Equal(t, "UPS - Ground", option.Name)
	require.Equal(t, int64(550), option.Price)
	require.Equal(t, int64(50), option.TaxAmount)
	require.Equal(t, int64(1000), option.TaxRate)
	require.True(t, option.Preselected)
}

func TestMethodIDCollapsesDuplicateCodes(t *testing.T) {
	t.Parallel()

	method := kco.ShippingMethod{CarrierCode: "UPS", MethodCode: "UPS"}
	require.Equal(t, "UPS", kco.MethodID(method))

	method = kco.ShippingMethod{CarrierCode: "UPS", MethodCode: "Ground"}
	require.Equal(t, "UPS_Ground", kco.MethodID(method))
}

func TestShippingOptionLine(t *testing.T) {
	t.Parallel()

	option := kco.ShippingOption{
		ID:        "dhl_express",
		Name:      "DHL - Express",
		Price:     1299,
		TaxAmount: 260,
		TaxRate:   25000,
	}
	line := kco.ShippingOptionLine(option)
	require.Equal(t, kco.LineTypeShippingFee, line.Type)
	require.Equal(t, int64(1), line.Quantity)
	require.Equal(t, option.Name, line.Name)
	require.Equal(t, option.Price, line.TotalAmount)
	require.Equal(t, option.Price, line.UnitPrice)
	require.Equal(t, option.TaxAmount, line.TotalTaxAmount)
	require.Equal(t, option.TaxRate, line.TaxRate)
}

func TestProductLineDiscountAndMetadata(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{
		Media:  staticMedia{url: "https://cdn.example.com/t/600/shirt.jpg"},
		Routes: staticLinker{path: "/de/simple-product/shirt"},
		Cfg:    kco.Config{ProductBaseURL: "https://shop.example.com"},
	}
	order := assembler.BuildOrder(t.Context(), kco.State{}, []kco.CartLineItem{{
		Name:            "Shirt",
		Qty:             2,
		PriceInclTax:    25,
		RowTotalInclTax: 50,
		DiscountAmount:  5,
		TaxAmount:       10,
		TaxPercent:      25,
		Product:         &kco.ProductRef{SKU: "SH-1", Image: "/s/h/shirt.jpg", Slug: "shirt", TypeID: "simple"},
	}}, nil, kco.CartTotals{BaseGrandTotal: 45, BaseTaxAmount: 10}, testView())

	require.Len(t, order.OrderLines, 1)
	line := order.OrderLines[0]
	require.Equal(t, kco.LineTypePhysical, line.Type)
	require.Equal(t, int64(2500), line.UnitPrice)
	// tax_percent is scaled exactly like a monetary amount; 25% lands
	// on the provider's 25000 encoding.
	require.Equal(t, int64(2500), line.TaxRate)
	require.Equal(t, int64(4500), line.TotalAmount)
	require.Equal(t, int64(500), line.TotalDiscountAmount)
	require.Equal(t, int64(1000), line.TotalTaxAmount)
	require.Equal(t, "SH-1", line.Reference)
	require.Equal(t, "https://cdn.example.com/t/600/shirt.jpg", line.ImageURL)
	require.Equal(t, "https://shop.example.com/de/simple-product/shirt", line.ProductURL)
}

func TestProductLineWithoutBaseURLSkipsProductURL(t *testing.T) {
	t.Parallel()

	assembler := &kco.Assembler{Routes: staticLinker{path: "/p/shirt"}}
	order := assembler.BuildOrder(t.Context(), kco.State{}, []kco.CartLineItem{{
		Name:    "Shirt",
		Qty:     1,
		Product: &kco.ProductRef{SKU: "SH-1"},
	}}, nil, kco.CartTotals{}, testView())

	require.Empty(t, order.OrderLines[0].ProductURL)
	require.Equal(t, "SH-1", order.OrderLines[0].Reference)
}

type staticMedia struct{ url string }

func (m staticMedia) ThumbnailURL(string, int, int) string { return m.url }

type staticLinker struct{ path string }

func (l staticLinker) ProductURL(kco.ProductRef, string) string { return l.path }
