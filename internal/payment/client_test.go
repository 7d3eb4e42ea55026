package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePayment_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payment/create", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pay-key", req["api_key"])
		assert.Equal(t, float64(50000), req["amount"])
		assert.Equal(t, "TP-abc", req["ref_id"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"trx_id":        "MP-777",
				"amount":        50000,
				"amount_unique": 50042,
				"qr_string":     "00020101021226...",
				"expired_in":    3600,
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pay-key")
	res, err := c.CreatePayment(context.Background(), 50000, "TP-abc", "http://cb.local/webhook")
	require.NoError(t, err)
	assert.Equal(t, "MP-777", res.ProviderTrxID)
	assert.Equal(t, int64(50042), res.UniqueAmount)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.NotEmpty(t, res.QRString)
}

func TestCreatePayment_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "amount below minimum",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pay-key")
	_, err := c.CreatePayment(context.Background(), 100, "TP-abc", "http://cb.local/webhook")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "amount below minimum")
}

func TestCreatePayment_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "pay-key")
	_, err := c.CreatePayment(context.Background(), 50000, "TP-abc", "http://cb.local/webhook")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestCreatePayment_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pay-key")
	_, err := c.CreatePayment(context.Background(), 50000, "TP-abc", "http://cb.local/webhook")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestWebhookPayload_Validate(t *testing.T) {
	valid := WebhookPayload{Status: "PAID", RefID: "TP-abc", AmountReceived: 50042, TrxIDGateway: "MP-777"}
	assert.NoError(t, valid.Validate())

	wrongStatus := valid
	wrongStatus.Status = "PENDING"
	assert.ErrorIs(t, wrongStatus.Validate(), ErrInvalidWebhook)

	noRef := valid
	noRef.RefID = ""
	assert.ErrorIs(t, noRef.Validate(), ErrInvalidWebhook)

	badAmount := valid
	badAmount.AmountReceived = 0
	assert.ErrorIs(t, badAmount.Validate(), ErrInvalidWebhook)
}
