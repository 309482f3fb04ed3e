package kco

import (
	"github.com/noah-isme/backend-kco/internal/money"
)

// MethodID returns the composite identifier for a shipping method:
// carrier and method codes, deduplicated and joined with "_". This is
// the key the persisted selection is matched against.
func MethodID(method ShippingMethod) string {
	return money.JoinUnique("_", method.CarrierCode, method.MethodCode)
}

// MethodName returns the display name for a shipping method, built
// from the carrier and method titles.
func MethodName(method ShippingMethod) string {
	return money.JoinUnique(" - ", method.CarrierTitle, method.MethodTitle)
}

// BuildShippingOption converts a quoted shipping method into the
// provider's shipping-option shape. The tax rate is inferred from the
// inclusive/exclusive price pair, not taken from method metadata.
func BuildShippingOption(method ShippingMethod, preselected bool) ShippingOption {
	return ShippingOption{
		ID:          MethodID(method),
		Name:        MethodName(method),
		Price:       money.MinorUnits(method.PriceInclTax),
		TaxAmount:   money.MinorUnits(method.PriceInclTax - method.PriceExclTax),
		TaxRate:     money.TaxRateFromAmounts(method.PriceInclTax, method.PriceExclTax),
		Preselected: preselected,
	}
}

// ShippingOptionLine renders a shipping option as a shipping_fee order
// line with quantity 1.
func ShippingOptionLine(option ShippingOption) OrderLine {
	return OrderLine{
		Type:           LineTypeShippingFee,
		Quantity:       1,
		Name:           option.Name,
		TotalAmount:    option.Price,
		UnitPrice:      option.Price,
		TotalTaxAmount: option.TaxAmount,
		TaxRate:        option.TaxRate,
	}
}

// productLine converts a cart row into a physical order line. The
// discount is netted into total_amount up front; the provider never
// sees a separate negative line. tax_percent goes through MinorUnits
// like a monetary amount, which lands exactly on the provider's
// basis-points-x100 encoding. Keep that reuse: the provider reconciles
// against it to the penny.
func (a *Assembler) productLine(item CartLineItem, storeCode string) OrderLine {
	line := OrderLine{
		Type:                LineTypePhysical,
		Name:                item.Name,
		Quantity:            item.Qty,
		UnitPrice:           money.MinorUnits(item.PriceInclTax),
		TaxRate:             money.MinorUnits(item.TaxPercent),
		TotalAmount:         money.MinorUnits(item.RowTotalInclTax) - money.MinorUnits(item.DiscountAmount),
		TotalDiscountAmount: money.MinorUnits(item.DiscountAmount),
		TotalTaxAmount:      money.MinorUnits(item.TaxAmount),
	}
	if item.Product == nil {
		return line
	}
	line.Reference = item.Product.SKU
	if a != nil && a.Media != nil {
		line.ImageURL = a.Media.ThumbnailURL(item.Product.Image, 600, 600)
	}
	if a != nil && a.Routes != nil && a.Cfg.ProductBaseURL != "" {
		line.ProductURL = a.Cfg.ProductBaseURL + a.Routes.ProductURL(*item.Product, storeCode)
	}
	return line
}
