// Package kco derives the checkout order payload submitted to the
// payment provider. The whole package is a pure computation over a
// snapshot of cart state: every call rebuilds the order from scratch,
// nothing is cached and nothing is mutated, so concurrent rebuilds
// while the shopper edits the cart are safe by construction.
package kco

import (
	"context"
	"encoding/json"
)

// Line type discriminators understood by the provider.
const (
	LineTypePhysical    = "physical"
	LineTypeShippingFee = "shipping_fee"
)

// CartTotals is the cart subsystem's authoritative aggregate snapshot.
// All fields are decimal amounts as reported by the commerce platform;
// conversion to minor units happens inside this package.
type CartTotals struct {
	BaseGrandTotal        float64        `json:"base_grand_total"`
	BaseTaxAmount         float64        `json:"base_tax_amount"`
	BaseShippingInclTax   float64        `json:"base_shipping_incl_tax"`
	BaseShippingTaxAmount float64        `json:"base_shipping_tax_amount"`
	ShippingInclTax       float64        `json:"shipping_incl_tax"`
	ShippingAmount        float64        `json:"shipping_amount"`
	ShippingTaxAmount     float64        `json:"shipping_tax_amount"`
	TotalSegments         []TotalSegment `json:"total_segments"`
}

// TotalSegment is one named aggregate row (subtotal, shipping, grand
// total, ...) from the platform totals. Values arrive as strings.
type TotalSegment struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

// ProductRef carries the linked catalog product for a cart line, when
// the storefront could match one.
type ProductRef struct {
	SKU       string `json:"sku"`
	ParentSKU string `json:"parent_sku,omitempty"`
	Slug      string `json:"slug,omitempty"`
	TypeID    string `json:"type_id,omitempty"`
	URLPath   string `json:"url_path,omitempty"`
	Image     string `json:"image,omitempty"`
}

// CartLineItem is one product row of the cart, with the platform's
// per-line totals already applied (tax inclusive, discounts separate).
type CartLineItem struct {
	ItemID          int64       `json:"item_id"`
	Name            string      `json:"name"`
	Qty             int64       `json:"qty"`
	PriceInclTax    float64     `json:"price_incl_tax"`
	RowTotalInclTax float64     `json:"row_total_incl_tax"`
	DiscountAmount  float64     `json:"discount_amount"`
	TaxAmount       float64     `json:"tax_amount"`
	TaxPercent      float64     `json:"tax_percent"`
	Product         *ProductRef `json:"product,omitempty"`
}

// ShippingMethod is one shipping candidate as quoted by the platform.
type ShippingMethod struct {
	CarrierCode  string  `json:"carrier_code"`
	MethodCode   string  `json:"method_code"`
	CarrierTitle string  `json:"carrier_title"`
	MethodTitle  string  `json:"method_title"`
	PriceInclTax float64 `json:"price_incl_tax"`
	PriceExclTax float64 `json:"price_excl_tax"`
}

// OrderLine is one itemized entry of the assembled order. Monetary
// fields are minor units; TaxRate is basis points x100.
type OrderLine struct {
	Type                string `json:"type,omitempty"`
	Reference           string `json:"reference,omitempty"`
	Name                string `json:"name"`
	Quantity            int64  `json:"quantity"`
	UnitPrice           int64  `json:"unit_price"`
	TaxRate             int64  `json:"tax_rate"`
	TotalAmount         int64  `json:"total_amount"`
	TotalDiscountAmount int64  `json:"total_discount_amount,omitempty"`
	TotalTaxAmount      int64  `json:"total_tax_amount"`
	ProductURL          string `json:"product_url,omitempty"`
	ImageURL            string `json:"image_url,omitempty"`
}

// ShippingOption is a shipping choice exposed to the provider widget.
type ShippingOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	TaxAmount   int64  `json:"tax_amount"`
	TaxRate     int64  `json:"tax_rate"`
	Preselected bool   `json:"preselected"`
}

// Order is the payload handed to the payment provider. Field names and
// numeric encodings are the provider's wire contract and must not
// drift.
type Order struct {
	OrderID                string           `json:"order_id,omitempty"`
	PurchaseCountry        string           `json:"purchase_country"`
	PurchaseCurrency       string           `json:"purchase_currency"`
	Locale                 string           `json:"locale"`
	OrderAmount            int64            `json:"order_amount"`
	OrderTaxAmount         int64            `json:"order_tax_amount"`
	OrderLines             []OrderLine      `json:"order_lines"`
	ShippingCountries      []string         `json:"shipping_countries"`
	ShippingOptions        []ShippingOption `json:"shipping_options"`
	SelectedShippingOption *ShippingOption  `json:"selected_shipping_option,omitempty"`
	Options                json.RawMessage  `json:"options,omitempty"`
	MerchantData           string           `json:"merchant_data"`
}

// State is the checkout-session side of the assembler input: the
// shopper's prior choices plus any provider order already on record.
type State struct {
	PurchaseCountry    string
	ShippingMethodCode string
	OrderID            string
	ShippingOptions    bool
	MerchantData       map[string]any
}

// Config is the provider-facing configuration consumed by the
// assembler and the line builders.
type Config struct {
	ShowShippingOptions bool
	ProductBaseURL      string
	Options             json.RawMessage
}

// SelectionReader reads the shipping-method identifier the shopper
// picked in a previous widget session. The assembler only ever reads
// it; writing belongs to the checkout UI.
type SelectionReader interface {
	ShippingMethodID(ctx context.Context, storeCode string) (string, error)
}

// MediaResolver resolves a catalog image reference into a thumbnail
// URL suitable for the provider widget.
type MediaResolver interface {
	ThumbnailURL(image string, width, height int) string
}

// ProductLinker builds the canonical storefront URL for a product.
type ProductLinker interface {
	ProductURL(product ProductRef, storeCode string) string
}
