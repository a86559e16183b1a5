package domain

import (
	"context"

	"github.com/smallbiznis/bookneo/pkg/db/pagination"
)

// Outcome is the defined result of an authenticated webhook delivery.
type Outcome string

const (
	OutcomeCompleted    Outcome = "completed"
	OutcomeFailed       Outcome = "failed"
	OutcomeReplayed     Outcome = "replayed"
	OutcomeConflict     Outcome = "conflict"
	OutcomeUnresolvable Outcome = "unresolvable"
)

// Delivery is one inbound webhook call. Body must be the exact bytes received.
type Delivery struct {
	Body       []byte
	Signature  string
	DeliveryID string
}

type ConfirmationStatus string

const (
	ConfirmationNone    ConfirmationStatus = ""
	ConfirmationSent    ConfirmationStatus = "sent"
	ConfirmationFailed  ConfirmationStatus = "failed"
	ConfirmationSkipped ConfirmationStatus = "skipped"
)

type Result struct {
	Outcome      Outcome
	DeliveryID   string
	BookingID    string
	PaymentID    string
	Confirmation ConfirmationStatus
	// ConfirmationErr wraps ErrSideEffectFailure; it never fails the delivery.
	ConfirmationErr error
}

// Reconciler applies gateway webhooks to bookings.
type Reconciler interface {
	Reconcile(ctx context.Context, delivery Delivery) (Result, error)
}

type Customer struct {
	Phone string
	Email string
	Name  string
}

type CreatePaymentOrderRequest struct {
	BookingID   string
	AmountMajor int64
	Currency    string
	Receipt     string
	Customer    Customer
}

type CreatePaymentOrderResult struct {
	OrderID string `json:"id"`
	Amount  int64  `json:"amount"`
}

type RefundPaymentRequest struct {
	PaymentID   string
	AmountMajor int64
}

// OrderService drives the order side of the payment lifecycle.
type OrderService interface {
	CreatePaymentOrder(ctx context.Context, req CreatePaymentOrderRequest) (CreatePaymentOrderResult, error)
	FetchPayment(ctx context.Context, paymentID string) (PaymentDetails, error)
	FetchOrder(ctx context.Context, orderID string) (OrderDetails, error)
	RefundPayment(ctx context.Context, req RefundPaymentRequest) (RefundResult, error)
}

type ListNotificationsRequest struct {
	BookingID string
	PaymentID string
	Outcome   string
	PageToken string
	PageSize  int32
}

type ListNotificationsResponse struct {
	pagination.PageInfo
	Notifications []NotificationRecord `json:"notifications"`
}

// NotificationLog exposes the delivery audit trail.
type NotificationLog interface {
	List(ctx context.Context, req ListNotificationsRequest) (ListNotificationsResponse, error)
}
