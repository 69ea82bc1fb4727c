package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	c := New("key_id", "key_secret", "", nil)

	valid := sign("key_secret", "order_1", "pay_1")
	assert.True(t, c.VerifySignature("order_1", "pay_1", valid))

	assert.False(t, c.VerifySignature("order_1", "pay_1", valid+"00"))
	assert.False(t, c.VerifySignature("order_2", "pay_1", valid))
	assert.False(t, c.VerifySignature("order_1", "pay_2", valid))
	assert.False(t, c.VerifySignature("", "pay_1", valid))
	assert.False(t, c.VerifySignature("order_1", "pay_1", ""))

	withWrongSecret := sign("other_secret", "order_1", "pay_1")
	assert.False(t, c.VerifySignature("order_1", "pay_1", withWrongSecret))
}

func TestCreateOrder(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_42","amount":4000,"currency":"INR","receipt":"rcpt-1","status":"created"}`))
	}))
	defer srv.Close()

	c := New("key_id", "key_secret", srv.URL, nil)
	order, err := c.CreateOrder(context.Background(), 4000, "INR", "rcpt-1")
	require.NoError(t, err)

	assert.Equal(t, "/orders", gotPath)
	assert.NotEmpty(t, gotAuth, "basic auth header expected")
	assert.Equal(t, "order_42", order.ID)
	assert.Equal(t, int64(4000), order.Amount)
}

func TestRefundSurfacesGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"already refunded"}}`))
	}))
	defer srv.Close()

	c := New("key_id", "key_secret", srv.URL, nil)
	_, err := c.Refund(context.Background(), "pay_1", 4000, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestPaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay_7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pay_7","status":"captured"}`))
	}))
	defer srv.Close()

	c := New("key_id", "key_secret", srv.URL, nil)
	status, err := c.PaymentStatus(context.Background(), "pay_7")
	require.NoError(t, err)
	assert.Equal(t, "captured", status)
}
