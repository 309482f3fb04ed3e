package obs

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics groups the domain collectors for order assembly and
// provider submission.
type CheckoutMetrics struct {
	OrdersBuilt      *prometheus.CounterVec
	ProviderRequests *prometheus.CounterVec
	FreeShipping     prometheus.Counter
}

// NewCheckoutMetrics registers and returns the checkout collectors.
func NewCheckoutMetrics(namespace string, reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &CheckoutMetrics{
		OrdersBuilt: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_built_total",
			Help:      "Order payloads assembled, labelled by shipping resolution path.",
		}, []string{"shipping_resolution"})),
		ProviderRequests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Requests sent to the checkout provider.",
		}, []string{"operation", "outcome"})),
		FreeShipping: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "free_shipping_orders_total",
			Help:      "Assembled orders that qualified for free shipping.",
		})),
	}
}
