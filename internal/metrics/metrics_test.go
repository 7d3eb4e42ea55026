package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPurchase(t *testing.T) {
	before := testutil.ToFloat64(PurchasesTotal.WithLabelValues("submitted"))
	RecordPurchase("submitted")
	after := testutil.ToFloat64(PurchasesTotal.WithLabelValues("submitted"))
	assert.Equal(t, before+1, after)
}

func TestRecordRefund(t *testing.T) {
	before := testutil.ToFloat64(PurchaseRefundsTotal)
	RecordRefund()
	assert.Equal(t, before+1, testutil.ToFloat64(PurchaseRefundsTotal))
}

func TestRecordTopupCounters(t *testing.T) {
	created := testutil.ToFloat64(TopupsCreatedTotal)
	paid := testutil.ToFloat64(TopupsPaidTotal)

	RecordTopupCreated()
	RecordTopupPaid()

	assert.Equal(t, created+1, testutil.ToFloat64(TopupsCreatedTotal))
	assert.Equal(t, paid+1, testutil.ToFloat64(TopupsPaidTotal))
}

func TestRecordWebhook(t *testing.T) {
	before := testutil.ToFloat64(WebhooksTotal.WithLabelValues("duplicate"))
	RecordWebhook("duplicate")
	assert.Equal(t, before+1, testutil.ToFloat64(WebhooksTotal.WithLabelValues("duplicate")))
}

func TestRecordGatewayError(t *testing.T) {
	before := testutil.ToFloat64(GatewayErrorsTotal.WithLabelValues("fulfillment", "unreachable"))
	RecordGatewayError("fulfillment", "unreachable")
	assert.Equal(t, before+1, testutil.ToFloat64(GatewayErrorsTotal.WithLabelValues("fulfillment", "unreachable")))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordHTTPRequest("GET", "/health", "200", 0.01)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))
}
