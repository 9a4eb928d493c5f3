package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for gateway traffic and invoice state.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatewayRequests *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	invoicesPaid    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wetech",
			Name:      "gateway_requests_total",
			Help:      "Outbound payment gateway calls by vendor, operation and outcome.",
		}, []string{"vendor", "operation", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wetech",
			Name:      "gateway_request_duration_seconds",
			Help:      "Latency of outbound payment gateway calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"vendor", "operation"}),
		invoicesPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wetech",
			Name:      "invoice_paid_transitions_total",
			Help:      "Invoices moved from Unpaid to Paid, by source.",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.gatewayRequests, m.gatewayLatency, m.invoicesPaid)
	}
	return m
}

// ObserveGatewayCall records one outbound call.
func (m *Metrics) ObserveGatewayCall(vendor, operation, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(vendor, operation, outcome).Inc()
	m.gatewayLatency.WithLabelValues(vendor, operation).Observe(took.Seconds())
}

// InvoicePaid records an Unpaid to Paid transition.
func (m *Metrics) InvoicePaid(source string) {
	if m == nil {
		return
	}
	m.invoicesPaid.WithLabelValues(source).Inc()
}
