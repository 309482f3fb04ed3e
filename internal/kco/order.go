package kco

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strconv"

	"github.com/noah-isme/backend-kco/internal/money"
	"github.com/noah-isme/backend-kco/internal/store"
)

// iso3166 is the shape check applied to purchase countries. Anything
// that is not two ASCII letters falls back to the store default.
var iso3166 = regexp.MustCompile(`^[A-Za-z]{2}$`)

// Assembler builds provider order payloads from cart snapshots. All
// fields are optional collaborators: a zero Assembler still produces a
// structurally valid order, it just skips image URLs, product links
// and the persisted-selection lookup.
type Assembler struct {
	Selections SelectionReader
	Media      MediaResolver
	Routes     ProductLinker
	Cfg        Config
}

// BuildOrder assembles the provider payload for one checkout snapshot.
//
// Shipping is resolved by a strict priority chain, first match wins:
//
//  1. full option list: config and session both ask for provider-side
//     shipping selection; shipping is subtracted from the order totals
//     and every candidate is exposed as an option, index 0 preselected.
//  2. explicit selection: the checkout state names a method code that
//     matches a candidate; the shipping line is priced from the cart
//     totals, not from the candidate, because cart promotions are not
//     reflected in the raw quotes.
//  3. fallback: persisted selection id, else first candidate, else no
//     shipping line. Order totals in this branch are the sum over the
//     order lines; there is no trustworthy cart-level shipping split to
//     subtract here, so the formula intentionally differs from 1 and 2.
func (a *Assembler) BuildOrder(ctx context.Context, state State, items []CartLineItem, methods []ShippingMethod, totals CartTotals, view store.View) Order {
	order := Order{
		OrderID:           state.OrderID,
		PurchaseCountry:   PurchaseCountry(state.PurchaseCountry, view),
		PurchaseCurrency:  view.CurrencyCode,
		Locale:            view.DefaultLocale,
		OrderAmount:       money.MinorUnits(totals.BaseGrandTotal),
		OrderTaxAmount:    money.MinorUnits(totals.BaseTaxAmount),
		OrderLines:        make([]OrderLine, 0, len(items)+1),
		ShippingCountries: shippingCountries(view),
		ShippingOptions:   []ShippingOption{},
		Options:           a.Cfg.Options,
		MerchantData:      encodeMerchantData(state.MerchantData),
	}
	for _, item := range items {
		order.OrderLines = append(order.OrderLines, a.productLine(item, view.Code))
	}

	selected, explicit := findByMethodCode(methods, state.ShippingMethodCode)
	switch {
	case a.Cfg.ShowShippingOptions && state.ShippingOptions:
		order.OrderAmount = money.MinorUnits(totals.BaseGrandTotal - totals.BaseShippingInclTax)
		order.OrderTaxAmount = money.MinorUnits(totals.BaseTaxAmount - totals.BaseShippingTaxAmount)
		for i, method := range methods {
			order.ShippingOptions = append(order.ShippingOptions, BuildShippingOption(method, i == 0))
		}

	case explicit:
		// Undo any earlier shipping subtraction: once a method is
		// chosen the plain cart totals are authoritative again.
		order.OrderAmount = money.MinorUnits(totals.BaseGrandTotal)
		order.OrderTaxAmount = money.MinorUnits(totals.BaseTaxAmount)
		order.OrderLines = append(order.OrderLines, cartShippingLine(selected, totals))

	default:
		option, ok := a.fallbackOption(ctx, methods, view.Code)
		if ok {
			order.OrderLines = append(order.OrderLines, ShippingOptionLine(option))
			order.SelectedShippingOption = &option
			order.OrderAmount, order.OrderTaxAmount = sumLines(order.OrderLines)
		}
	}
	return order
}

// cartShippingLine prices the explicit selection from the cart-level
// shipping figures. The rate here is a plain fraction until the very
// last step; the bps-x100 encoding only appears on the wire field.
func cartShippingLine(method ShippingMethod, totals CartTotals) OrderLine {
	var rate float64
	if totals.ShippingAmount != 0 {
		rate = totals.ShippingTaxAmount / totals.ShippingAmount
	}
	taxAmount := money.TaxAmountFromInclusive(totals.ShippingInclTax, rate)
	var taxRate int64
	if rate != 0 {
		taxRate = int64(math.Round(rate * 10000))
	}
	price := money.MinorUnits(totals.ShippingInclTax)
	return OrderLine{
		Type:           LineTypeShippingFee,
		Quantity:       1,
		Name:           MethodName(method),
		TotalAmount:    price,
		UnitPrice:      price,
		TotalTaxAmount: money.MinorUnits(taxAmount),
		TaxRate:        taxRate,
	}
}

// fallbackOption resolves the shipping selection when nothing explicit
// matched: the persisted widget selection first, then the first quoted
// candidate. The chain is a strict priority, never a merge, so at most
// one option ends up selected.
func (a *Assembler) fallbackOption(ctx context.Context, methods []ShippingMethod, storeCode string) (ShippingOption, bool) {
	var selected *ShippingMethod
	if a.Selections != nil {
		if id, err := a.Selections.ShippingMethodID(ctx, storeCode); err == nil && id != "" {
			for i := range methods {
				if MethodID(methods[i]) == id {
					selected = &methods[i]
					break
				}
			}
		}
	}
	if selected == nil && len(methods) > 0 {
		selected = &methods[0]
	}
	if selected == nil {
		return ShippingOption{}, false
	}
	return BuildShippingOption(*selected, false), true
}

// PurchaseCountry resolves the purchase country: explicit session
// override first, then the store default. Candidates outside the
// store's shipping-country list or failing the two-letter shape check
// are replaced by the store default.
func PurchaseCountry(candidate string, view store.View) string {
	country := candidate
	if country == "" {
		country = view.DefaultCountry
	}
	if !view.AllowsShippingTo(country) {
		country = view.DefaultCountry
	}
	if !iso3166.MatchString(country) {
		country = view.DefaultCountry
	}
	return country
}

// FreeShipping reports whether the cart totals carry a shipping
// segment that truncates to zero, i.e. a coupon zeroed out shipping.
func FreeShipping(totals CartTotals) bool {
	for _, segment := range totals.TotalSegments {
		if segment.Code != "shipping" {
			continue
		}
		value, err := strconv.ParseFloat(segment.Value, 64)
		if err != nil {
			continue
		}
		return int64(value) == 0
	}
	return false
}

func findByMethodCode(methods []ShippingMethod, code string) (ShippingMethod, bool) {
	if code == "" {
		return ShippingMethod{}, false
	}
	for _, method := range methods {
		if method.MethodCode == code {
			return method, true
		}
	}
	return ShippingMethod{}, false
}

func sumLines(lines []OrderLine) (amount, tax int64) {
	for _, line := range lines {
		amount += line.TotalAmount
		tax += line.TotalTaxAmount
	}
	return amount, tax
}

func shippingCountries(view store.View) []string {
	if len(view.ShippingCountries) == 0 {
		return []string{}
	}
	return view.ShippingCountries
}

func encodeMerchantData(data map[string]any) string {
	if data == nil {
		return "{}"
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
