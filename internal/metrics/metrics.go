package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppob_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ppob_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppob_purchases_total",
			Help: "Total number of purchases by outcome",
		},
		[]string{"status"},
	)

	PurchaseRefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ppob_purchase_refunds_total",
			Help: "Total number of purchase refunds issued",
		},
	)

	TopupsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ppob_topups_created_total",
			Help: "Total number of topup payment requests created",
		},
	)

	TopupsPaidTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ppob_topups_paid_total",
			Help: "Total number of topups credited",
		},
	)

	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppob_webhooks_total",
			Help: "Total number of webhook deliveries by result",
		},
		[]string{"result"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ppob_gateway_request_duration_seconds",
			Help:    "Outbound gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"gateway", "operation"},
	)

	GatewayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppob_gateway_errors_total",
			Help: "Total number of gateway failures by kind",
		},
		[]string{"gateway", "kind"},
	)

	SweeperQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ppob_sweeper_queue_length",
			Help: "Current length of the purchase status sweep queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPurchase(status string) {
	PurchasesTotal.WithLabelValues(status).Inc()
}

func RecordRefund() {
	PurchaseRefundsTotal.Inc()
}

func RecordTopupCreated() {
	TopupsCreatedTotal.Inc()
}

func RecordTopupPaid() {
	TopupsPaidTotal.Inc()
}

func RecordWebhook(result string) {
	WebhooksTotal.WithLabelValues(result).Inc()
}

func RecordGatewayRequest(gateway, operation string, duration float64) {
	GatewayRequestDuration.WithLabelValues(gateway, operation).Observe(duration)
}

func RecordGatewayError(gateway, kind string) {
	GatewayErrorsTotal.WithLabelValues(gateway, kind).Inc()
}
