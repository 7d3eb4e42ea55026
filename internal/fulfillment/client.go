// Package fulfillment talks to the external goods-delivery provider
// (MamzStore API): submit a purchase, poll its status. It reports two
// distinct failure kinds: ErrUnreachable for transport problems and a
// business rejection carried in the Submit result.
package fulfillment

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

var ErrUnreachable = errors.New("fulfillment gateway unreachable")

type State string

const (
	StatePending State = "Pending"
	StateSuccess State = "Success"
	StateFailed  State = "Failed"
)

type SubmitResult struct {
	Accepted      bool
	ProviderRefID string
	Message       string
}

type StatusResult struct {
	State        State
	SerialNumber string
}

type Client interface {
	Submit(ctx context.Context, sku, destination, clientRefID string) (*SubmitResult, error)
	CheckStatus(ctx context.Context, providerRefID string) (*StatusResult, error)
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

type transactionRequest struct {
	APIKey string `json:"api_key"`
	SKU    string `json:"sku"`
	Dest   string `json:"dest"`
	RefID  string `json:"ref_id,omitempty"`
}

type transactionResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		RefID  string `json:"ref_id"`
		Dest   string `json:"dest"`
		SKU    string `json:"sku"`
		Price  int64  `json:"price"`
		Status string `json:"status"`
		SN     string `json:"sn"`
	} `json:"data"`
}

func (c *client) Submit(ctx context.Context, sku, destination, clientRefID string) (*SubmitResult, error) {
	start := time.Now()

	var resp transactionResponse
	err := c.post(ctx, "/api/v1/transaction", transactionRequest{
		APIKey: c.apiKey,
		SKU:    sku,
		Dest:   destination,
		RefID:  clientRefID,
	}, &resp)
	metrics.RecordGatewayRequest("fulfillment", "submit", time.Since(start).Seconds())
	if err != nil {
		metrics.RecordGatewayError("fulfillment", "unreachable")
		return nil, err
	}

	result := &SubmitResult{
		Accepted: resp.Status,
		Message:  resp.Message,
	}
	if resp.Data != nil {
		result.ProviderRefID = resp.Data.RefID
	}
	if !resp.Status {
		metrics.RecordGatewayError("fulfillment", "rejected")
	}
	return result, nil
}

type statusRequest struct {
	APIKey string `json:"api_key"`
	RefID  string `json:"ref_id"`
}

type statusResponse struct {
	Status bool `json:"status"`
	Data   *struct {
		RefID  string `json:"ref_id"`
		Status string `json:"status"`
		SN     string `json:"sn"`
	} `json:"data"`
}

func (c *client) CheckStatus(ctx context.Context, providerRefID string) (*StatusResult, error) {
	start := time.Now()

	var resp statusResponse
	err := c.post(ctx, "/api/v1/check_status", statusRequest{
		APIKey: c.apiKey,
		RefID:  providerRefID,
	}, &resp)
	metrics.RecordGatewayRequest("fulfillment", "check_status", time.Since(start).Seconds())
	if err != nil {
		metrics.RecordGatewayError("fulfillment", "unreachable")
		return nil, err
	}

	result := &StatusResult{State: StatePending}
	if resp.Data != nil {
		result.State = mapProviderStatus(resp.Data.Status)
		result.SerialNumber = resp.Data.SN
	}
	return result, nil
}

// mapProviderStatus translates the provider's vocabulary. Anything
// unrecognized is treated as still pending rather than failed: a new
// status string must never trigger a refund.
func mapProviderStatus(s string) State {
	switch s {
	case "Sukses":
		return StateSuccess
	case "Gagal":
		return StateFailed
	default:
		return StatePending
	}
}

func (c *client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", ErrUnreachable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: bad response body: %v", ErrUnreachable, err)
	}
	return nil
}
