package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Booking, error)
	UpdatePayment(ctx context.Context, db *gorm.DB, id string, patch PaymentPatch, now time.Time) (int64, error)
	// ApplyPayment writes status only while the booking is not yet settled.
	ApplyPayment(ctx context.Context, db *gorm.DB, id string, status PaymentStatus, paymentID string, now time.Time) (int64, error)
	// MarkRefunded moves the most recently updated completed booking paid by paymentID to
	// refunded and returns its id, or "" when none matched.
	MarkRefunded(ctx context.Context, db *gorm.DB, paymentID string, now time.Time) (string, error)
	AttachOrder(ctx context.Context, db *gorm.DB, id, orderID string, now time.Time) (int64, error)
}
