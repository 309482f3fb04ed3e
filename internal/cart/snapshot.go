// Package cart validates and normalises the cart snapshot the
// storefront posts before an order payload can be derived. The
// platform totals are authoritative for every amount; the storefront
// cart items only contribute the linked product metadata.
package cart

import (
	"errors"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-kco/internal/kco"
)

// ErrTotalsNotReady is returned when the platform has not finished
// computing totals for the cart. Callers must not derive an order in
// this state.
var ErrTotalsNotReady = errors.New("cart totals not ready")

// ErrCartOutOfSync is returned when a totals row cannot be matched to
// any cart item, i.e. the upstream snapshot is malformed.
var ErrCartOutOfSync = errors.New("cart items do not match totals")

// Item is one storefront cart entry. ItemID references the platform
// totals row the entry was priced into; it is nil until the platform
// has recomputed totals for the line.
type Item struct {
	ItemID  *int64          `json:"item_id"`
	Product *kco.ProductRef `json:"product,omitempty"`
}

// Snapshot is the full cart state posted by the storefront.
type Snapshot struct {
	Totals    *kco.CartTotals    `json:"totals" validate:"required"`
	Items     []kco.CartLineItem `json:"items" validate:"dive"`
	CartItems []Item             `json:"cart_items"`
}

// Resolver validates snapshots and merges them into assembler inputs.
type Resolver struct {
	Validate *validator.Validate
}

// NewResolver constructs a Resolver with a ready validator.
func NewResolver() *Resolver {
	return &Resolver{Validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Resolve checks the snapshot preconditions and returns the totals
// plus the merged line items, each totals row enriched with the
// product metadata of its cart item.
func (r *Resolver) Resolve(snap Snapshot) ([]kco.CartLineItem, kco.CartTotals, error) {
	if r != nil && r.Validate != nil {
		if err := r.Validate.Struct(snap); err != nil {
			return nil, kco.CartTotals{}, err
		}
	}
	if snap.Totals == nil {
		return nil, kco.CartTotals{}, ErrTotalsNotReady
	}
	for _, item := range snap.CartItems {
		if item.ItemID == nil {
			return nil, kco.CartTotals{}, ErrTotalsNotReady
		}
	}

	byID := make(map[int64]Item, len(snap.CartItems))
	for _, item := range snap.CartItems {
		byID[*item.ItemID] = item
	}
	merged := make([]kco.CartLineItem, 0, len(snap.Items))
	for _, row := range snap.Items {
		item, ok := byID[row.ItemID]
		if !ok {
			return nil, kco.CartTotals{}, ErrCartOutOfSync
		}
		row.Product = item.Product
		merged = append(merged, row)
	}
	return merged, *snap.Totals, nil
}
