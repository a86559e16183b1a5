package domain

import (
	"context"
	"errors"
)

// ApplyOutcome classifies the effect of a gateway-reported payment on a booking.
type ApplyOutcome string

const (
	// ApplyOutcomeApplied means the status was written by this call.
	ApplyOutcomeApplied ApplyOutcome = "applied"
	// ApplyOutcomeReplayed means the booking already reflects this payment.
	ApplyOutcomeReplayed ApplyOutcome = "replayed"
	// ApplyOutcomeConflict means the booking is settled and the payment disagrees with it.
	ApplyOutcomeConflict ApplyOutcome = "conflict"
)

type ApplyPaymentRequest struct {
	BookingID string
	PaymentID string
	Status    PaymentStatus
}

type ApplyPaymentResult struct {
	Outcome ApplyOutcome
	Booking Booking
}

// Transitioned reports a fresh move into completed, the only case that warrants a confirmation.
func (r ApplyPaymentResult) Transitioned() bool {
	return r.Outcome == ApplyOutcomeApplied && r.Booking.PaymentStatus == PaymentStatusCompleted
}

type Service interface {
	GetByID(ctx context.Context, id string) (Booking, error)
	UpdatePayment(ctx context.Context, id string, patch PaymentPatch) (Booking, error)
	ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (ApplyPaymentResult, error)
	MarkRefunded(ctx context.Context, paymentID string) (Booking, error)
	AttachOrder(ctx context.Context, id, orderID string) error
}

var (
	ErrInvalidID        = errors.New("invalid_booking_id")
	ErrInvalidStatus    = errors.New("invalid_payment_status")
	ErrInvalidPaymentID = errors.New("invalid_payment_id")
	ErrEmptyPatch       = errors.New("empty_payment_patch")
	ErrNotFound         = errors.New("booking_not_found")
)
