// Package payment talks to the external payment-collection provider
// (MamzPay API): create a QR payment request and parse its webhook
// confirmations. Business effects of a webhook belong to the topup
// service, not here.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MamzStore/ppobb/internal/metrics"
)

var (
	ErrUnreachable    = errors.New("payment gateway unreachable")
	ErrRejected       = errors.New("payment gateway rejected request")
	ErrInvalidWebhook = errors.New("invalid webhook payload")
)

const StatusPaid = "PAID"

type CreateResult struct {
	ProviderTrxID string
	Amount        int64
	UniqueAmount  int64
	QRString      string
	ExpiresIn     int64 // seconds
}

// WebhookPayload is the inbound confirmation from the provider.
type WebhookPayload struct {
	Status         string `json:"status"`
	RefID          string `json:"ref_id"`
	AmountReceived int64  `json:"amount_received"`
	TrxIDGateway   string `json:"trx_id_gateway"`
}

// Validate checks payload shape only; whether the ref is known is the
// caller's concern.
func (p *WebhookPayload) Validate() error {
	if p.Status != StatusPaid {
		return fmt.Errorf("%w: unexpected status %q", ErrInvalidWebhook, p.Status)
	}
	if p.RefID == "" {
		return fmt.Errorf("%w: missing ref_id", ErrInvalidWebhook)
	}
	if p.AmountReceived <= 0 {
		return fmt.Errorf("%w: non-positive amount_received", ErrInvalidWebhook)
	}
	return nil
}

type Client interface {
	CreatePayment(ctx context.Context, amount int64, refID, callbackURL string) (*CreateResult, error)
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) Client {
	return &client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type createRequest struct {
	APIKey      string `json:"api_key"`
	Amount      int64  `json:"amount"`
	RefID       string `json:"ref_id"`
	CallbackURL string `json:"callback_url"`
}

type createResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		TrxID        string `json:"trx_id"`
		Amount       int64  `json:"amount"`
		AmountUnique int64  `json:"amount_unique"`
		QRString     string `json:"qr_string"`
		ExpiredIn    int64  `json:"expired_in"`
	} `json:"data"`
}

func (c *client) CreatePayment(ctx context.Context, amount int64, refID, callbackURL string) (*CreateResult, error) {
	payload, err := json.Marshal(createRequest{
		APIKey:      c.apiKey,
		Amount:      amount,
		RefID:       refID,
		CallbackURL: callbackURL,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payment/create", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	metrics.RecordGatewayRequest("payment", "create", time.Since(start).Seconds())
	if err != nil {
		metrics.RecordGatewayError("payment", "unreachable")
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordGatewayError("payment", "unreachable")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnreachable, resp.StatusCode)
	}

	var body createResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.RecordGatewayError("payment", "unreachable")
		return nil, fmt.Errorf("%w: bad response body: %v", ErrUnreachable, err)
	}

	if !body.Status || body.Data == nil {
		metrics.RecordGatewayError("payment", "rejected")
		if body.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrRejected, body.Message)
		}
		return nil, ErrRejected
	}

	return &CreateResult{
		ProviderTrxID: body.Data.TrxID,
		Amount:        body.Data.Amount,
		UniqueAmount:  body.Data.AmountUnique,
		QRString:      body.Data.QRString,
		ExpiresIn:     body.Data.ExpiredIn,
	}, nil
}
