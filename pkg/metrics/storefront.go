package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Order placement modes.
const (
	OrderModeRemote = "remote"
	OrderModeLocal  = "local"
)

// StorefrontMetrics records cart, catalog and order activity.
type StorefrontMetrics struct {
	degradedReads   *prometheus.CounterVec
	cartMutations   *prometheus.CounterVec
	ordersPlaced    *prometheus.CounterVec
	commerceLatency *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	degradedReads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_degraded_reads_total",
		Help: "Catalog reads that fell back to an empty result after a remote failure.",
	}, []string{"operation"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"operation"})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed, by placement mode.",
	}, []string{"mode"})
	commerceLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commerce_request_duration_seconds",
		Help:    "Duration of remote commerce API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(degradedReads, cartMutations, ordersPlaced, commerceLatency)
	return &StorefrontMetrics{
		degradedReads:   degradedReads,
		cartMutations:   cartMutations,
		ordersPlaced:    ordersPlaced,
		commerceLatency: commerceLatency,
	}
}

// IncDegradedRead counts a catalog read that returned an empty fallback.
func (m *StorefrontMetrics) IncDegradedRead(operation string) {
	if m == nil || m.degradedReads == nil {
		return
	}
	m.degradedReads.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncCartMutation counts an applied cart mutation.
func (m *StorefrontMetrics) IncCartMutation(operation string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncOrderPlaced counts a placed order by mode.
func (m *StorefrontMetrics) IncOrderPlaced(mode string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(mode)).Inc()
}

// ObserveCommerceRequest records the duration of one remote call.
func (m *StorefrontMetrics) ObserveCommerceRequest(operation string, duration time.Duration) {
	if m == nil || m.commerceLatency == nil {
		return
	}
	m.commerceLatency.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
