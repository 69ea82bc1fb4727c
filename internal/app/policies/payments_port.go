package policies

import "context"

// PaymentStatusCaptured is the gateway state confirming funds were actually
// collected. Refunds are only issued against captured payments.
const PaymentStatusCaptured = "captured"

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

type Refund struct {
	ID     string
	Amount int64
	Status string
}

// PaymentGateway is the contract the booking engine needs from the payment
// provider. Amounts are in the currency's minor unit (paise for INR).
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	PaymentStatus(ctx context.Context, paymentID string) (string, error)
	Refund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]string) (Refund, error)
}
