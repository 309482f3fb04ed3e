// Package store describes the storefront views (multistore contexts)
// the checkout service can assemble orders for. The active view is
// passed explicitly through the call chain; nothing in this service
// resolves it from ambient state, so the same process can serve any
// number of locales deterministically.
package store

import "strings"

// View is one storefront context: locale, currency and the shipping
// scope the store is allowed to sell into.
type View struct {
	Code              string
	Title             string
	DefaultCountry    string
	DefaultLocale     string
	CurrencyCode      string
	ShippingCountries []string
}

// AllowsShippingTo reports whether country is inside the view's
// shipping-country list. An empty list allows everything.
func (v View) AllowsShippingTo(country string) bool {
	if len(v.ShippingCountries) == 0 {
		return true
	}
	for _, c := range v.ShippingCountries {
		if strings.EqualFold(c, country) {
			return true
		}
	}
	return false
}

// Registry resolves store views by code.
type Registry struct {
	views       map[string]View
	defaultCode string
}

// NewRegistry indexes the provided views. The first view becomes the
// default when no code matches.
func NewRegistry(views ...View) *Registry {
	r := &Registry{views: make(map[string]View, len(views))}
	for i, v := range views {
		if i == 0 {
			r.defaultCode = v.Code
		}
		r.views[v.Code] = v
	}
	return r
}

// Resolve returns the view for code, falling back to the default view.
// The boolean reports whether any view could be resolved at all.
func (r *Registry) Resolve(code string) (View, bool) {
	if r == nil || len(r.views) == 0 {
		return View{}, false
	}
	if v, ok := r.views[strings.TrimSpace(code)]; ok {
		return v, true
	}
	return r.views[r.defaultCode], true
}
