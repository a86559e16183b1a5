package domain

import (
	"context"
	"encoding/json"
	"math"
)

// MinorUnitsPerMajor converts rupee amounts to paise.
const MinorUnitsPerMajor = 100

// MaxAmountMajor is the largest major-unit amount whose minor-unit value fits in an int64.
const MaxAmountMajor = math.MaxInt64 / MinorUnitsPerMajor

// ValidAmountMajor reports whether amount is positive and converts to minor units without overflow.
func ValidAmountMajor(amount int64) bool {
	return amount > 0 && amount <= MaxAmountMajor
}

// PaymentOrder is the gateway's record of an intended charge.
type PaymentOrder struct {
	ID        string            `json:"id"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes,omitempty"`
	CreatedAt int64             `json:"created_at"`
}

// CreateOrderRequest carries an amount already in minor units.
type CreateOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// PaymentDetails keeps the fields the service reads plus the raw gateway document.
type PaymentDetails struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	OrderID        string          `json:"order_id"`
	Amount         int64           `json:"amount"`
	AmountRefunded int64           `json:"amount_refunded"`
	Currency       string          `json:"currency"`
	Raw            json.RawMessage `json:"-"`
}

// FullyRefunded reports whether the gateway shows no remaining captured balance.
func (p PaymentDetails) FullyRefunded() bool {
	return p.Status == "refunded" || (p.Amount > 0 && p.AmountRefunded >= p.Amount)
}

type OrderDetails struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Raw      json.RawMessage `json:"-"`
}

type RefundResult struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	Amount    int64           `json:"amount"`
	Status    string          `json:"status"`
	Raw       json.RawMessage `json:"-"`
}

// Gateway is the outbound payment gateway API.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (PaymentOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (PaymentDetails, error)
	FetchOrder(ctx context.Context, orderID string) (OrderDetails, error)
	// Refund takes a major-unit amount and converts it to minor units.
	Refund(ctx context.Context, paymentID string, amountMajor int64) (RefundResult, error)
}
