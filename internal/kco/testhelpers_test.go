package kco_test

import (
	"context"
	"errors"

	"github.com/noah-isme/backend-kco/internal/kco"
	"github.com/noah-isme/backend-kco/internal/store"
)

func testView() store.View {
	return store.View{
		Code:              "de",
		Title:             "Example Shop",
		DefaultCountry:    "DE",
		DefaultLocale:     "de-DE",
		CurrencyCode:      "EUR",
		ShippingCountries: []string{"DE", "SE"},
	}
}

type memorySelection struct {
	id  string
	err error
}

func (m memorySelection) ShippingMethodID(context.Context, string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.id, nil
}

var errSelectionDown = errors.New("selection store unavailable")

func candidateMethods() []kco.ShippingMethod {
	return []kco.ShippingMethod{
		{
			CarrierCode:  "ups",
			MethodCode:   "ground",
			CarrierTitle: "UPS",
			MethodTitle:  "Ground",
			PriceInclTax: 5.50,
			PriceExclTax: 5.00,
		},
		{
			CarrierCode:  "dhl",
			MethodCode:   "express",
			CarrierTitle: "DHL",
			MethodTitle:  "Express",
			PriceInclTax: 12.10,
			PriceExclTax: 11.00,
		},
	}
}
