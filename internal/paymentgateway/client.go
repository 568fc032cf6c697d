package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// PaymentRequest is what the settlement flow hands to the gateway when an
// ONLINE payment is initiated.
type PaymentRequest struct {
	Amount      int64  `json:"amount"`
	OrderID     string `json:"order_id"`
	Description string `json:"description"`
	Mobile      string `json:"mobile,omitempty"`
	Email       string `json:"email,omitempty"`
	CallbackURL string `json:"callback_url"`
}

func (r *PaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be greater than 0")
	}
	if r.OrderID == "" {
		return errors.New("order_id is required")
	}
	if r.CallbackURL == "" {
		return errors.New("callback_url is required")
	}
	return nil
}

// PaymentRequestResult carries the redirect handle for a successfully
// initiated online payment.
type PaymentRequestResult struct {
	Authority  string `json:"authority"`
	PaymentURL string `json:"payment_url"`
}

// VerifyResult is the gateway's confirmation for a completed payment.
type VerifyResult struct {
	RefID  string `json:"ref_id"`
	Status string `json:"status"`
}

// Client talks to a redirect-style payment gateway over HTTP. All calls carry
// a request timeout so a slow gateway surfaces as an error instead of a hung
// request.
type Client struct {
	baseURL    string
	merchantID string
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL        string
	MerchantID     string
	RequestTimeout time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		merchantID: cfg.MerchantID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type gatewayEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

// RequestPayment initiates an online payment and returns the authority token
// plus the customer-facing redirect URL.
func (c *Client) RequestPayment(ctx context.Context, req *PaymentRequest) (*PaymentRequestResult, error) {
	if err := req.Validate(); err != nil {
		c.logger.Error("gateway request validation failed", "error", err)
		return nil, fmt.Errorf("validation error: %w", err)
	}

	payload := map[string]interface{}{
		"merchant_id":  c.merchantID,
		"amount":       req.Amount,
		"order_id":     req.OrderID,
		"description":  req.Description,
		"mobile":       req.Mobile,
		"email":        req.Email,
		"callback_url": req.CallbackURL,
	}

	c.logger.Info("requesting online payment",
		"order_id", req.OrderID,
		"amount", req.Amount,
		"callback_url", req.CallbackURL)

	var envelope gatewayEnvelope
	if err := c.post(ctx, "/payment/request", payload, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Errors) > 0 {
		c.logger.Error("gateway rejected payment request",
			"order_id", req.OrderID,
			"errors", envelope.Errors)
		return nil, fmt.Errorf("gateway error: %s", envelope.Errors[0])
	}

	var result PaymentRequestResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if result.Authority == "" || result.PaymentURL == "" {
		return nil, errors.New("gateway returned incomplete payment data")
	}

	c.logger.Info("online payment initiated",
		"order_id", req.OrderID,
		"authority", result.Authority)

	return &result, nil
}

// VerifyPayment confirms a callback's authority with the gateway. The amount
// must match what was originally requested.
func (c *Client) VerifyPayment(ctx context.Context, authority string, amount int64) (*VerifyResult, error) {
	if authority == "" {
		return nil, errors.New("authority is required")
	}

	payload := map[string]interface{}{
		"merchant_id": c.merchantID,
		"authority":   authority,
		"amount":      amount,
	}

	var envelope gatewayEnvelope
	if err := c.post(ctx, "/payment/verify", payload, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("gateway verification failed: %s", envelope.Errors[0])
	}

	var result VerifyResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	c.logger.Info("payment verified",
		"authority", authority,
		"ref_id", result.RefID)

	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out *gatewayEnvelope) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("gateway request failed", "error", err, "path", path)
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("gateway returned error status",
			"status", resp.StatusCode,
			"path", path)
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}
