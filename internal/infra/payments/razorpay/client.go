package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookmytourguide/internal/app/policies"
)

const DefaultBaseURL = "https://api.razorpay.com/v1"

// Client talks to the Razorpay REST API with basic auth. Amounts are in
// paise throughout, matching the gateway's contract.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	KeyID     string
	KeySecret string
	Logger    *slog.Logger
}

func New(keyID, keySecret, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		HTTP:      &http.Client{Timeout: 15 * time.Second},
		BaseURL:   strings.TrimRight(baseURL, "/"),
		KeyID:     keyID,
		KeySecret: keySecret,
		Logger:    logger,
	}
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (policies.Order, error) {
	payload := map[string]any{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", payload, &resp); err != nil {
		c.logError("razorpay create order failed", err)
		return policies.Order{}, err
	}
	return policies.Order{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Receipt:  resp.Receipt,
		Status:   resp.Status,
	}, nil
}

// VerifySignature checks the checkout callback signature: HMAC-SHA256 of
// "<orderID>|<paymentID>" keyed with the API secret, hex encoded.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) PaymentStatus(ctx context.Context, paymentID string) (string, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &resp); err != nil {
		c.logError("razorpay payment lookup failed", err)
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) Refund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]string) (policies.Refund, error) {
	payload := map[string]any{"amount": amountMinor}
	if len(notes) > 0 {
		payload["notes"] = notes
	}
	var resp refundResponse
	if err := c.do(ctx, http.MethodPost, "/payments/"+paymentID+"/refund", payload, &resp); err != nil {
		c.logError("razorpay refund failed", err)
		return policies.Refund{}, err
	}
	return policies.Refund{ID: resp.ID, Amount: resp.Amount, Status: resp.Status}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	if c == nil || c.HTTP == nil {
		return errors.New("razorpay: http client not configured")
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	request.SetBasicAuth(c.KeyID, c.KeySecret)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("razorpay returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) logError(msg string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "error", err)
}

var _ policies.PaymentGateway = (*Client)(nil)
