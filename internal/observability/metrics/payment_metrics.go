package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/bookneo/pkg/db"
)

// Gateway operations used as label values.
const (
	GatewayOpCreateOrder  = "create_order"
	GatewayOpFetchPayment = "fetch_payment"
	GatewayOpFetchOrder   = "fetch_order"
	GatewayOpRefund       = "refund"
)

// PaymentMetrics exposes prometheus series for the payment path.
type PaymentMetrics struct {
	reconcileDuration *prometheus.HistogramVec
	reconcileErrors   *prometheus.CounterVec
	dedupHits         prometheus.Counter
	gatewayDuration   *prometheus.HistogramVec
	gatewayRequests   *prometheus.CounterVec
	conflicts         prometheus.Counter
}

var (
	paymentMetricsOnce sync.Once
	paymentMetrics     *PaymentMetrics
)

// Payment returns the process-wide payment metrics registered on the default registerer.
func Payment() *PaymentMetrics {
	return PaymentWithConfig(Config{})
}

// PaymentWithConfig returns the singleton using config for constant labels.
func PaymentWithConfig(cfg Config) *PaymentMetrics {
	paymentMetricsOnce.Do(func() {
		paymentMetrics = NewPaymentMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return paymentMetrics
}

// NewPaymentMetrics registers a fresh set of series on registerer.
func NewPaymentMetrics(registerer prometheus.Registerer, cfg Config) *PaymentMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "bookneo"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &PaymentMetrics{
		reconcileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "bookneo_webhook_reconcile_duration_seconds",
			Help:        "Webhook reconcile latency by outcome.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		reconcileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookneo_webhook_reconcile_errors_total",
			Help:        "Webhook deliveries answered with 5xx, by store failure reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		dedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookneo_webhook_dedup_hits_total",
			Help:        "Redeliveries short-circuited by the delivery cache.",
			ConstLabels: constLabels,
		}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "bookneo_gateway_request_duration_seconds",
			Help:        "Outbound gateway call latency by operation.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
			ConstLabels: constLabels,
		}, []string{"operation"}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookneo_gateway_requests_total",
			Help:        "Outbound gateway calls by operation and HTTP status.",
			ConstLabels: constLabels,
		}, []string{"operation", "status_code"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookneo_payment_conflicts_total",
			Help:        "Notifications rejected because the booking is already settled by another payment.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(
		m.reconcileDuration,
		m.reconcileErrors,
		m.dedupHits,
		m.gatewayDuration,
		m.gatewayRequests,
		m.conflicts,
	)
	return m
}

// ObserveReconcile records one processed delivery.
func (m *PaymentMetrics) ObserveReconcile(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.reconcileDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncReconcileError records a delivery that failed with an unexpected error.
func (m *PaymentMetrics) IncReconcileError(err error) {
	if m == nil || err == nil {
		return
	}
	m.reconcileErrors.WithLabelValues(db.ClassifyError(err)).Inc()
}

func (m *PaymentMetrics) IncDedupHit() {
	if m == nil {
		return
	}
	m.dedupHits.Inc()
}

func (m *PaymentMetrics) IncConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

// ObserveGatewayCall records an outbound call. statusCode 0 means transport failure.
func (m *PaymentMetrics) ObserveGatewayCall(operation string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.gatewayRequests.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
}
