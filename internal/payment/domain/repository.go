package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/bookneo/pkg/db/pagination"
	"gorm.io/gorm"
)

type NotificationFilter struct {
	BookingID string
	PaymentID string
	Outcome   string
}

type Repository interface {
	// InsertNotification returns false when the delivery id is already recorded.
	InsertNotification(ctx context.Context, db *gorm.DB, record *NotificationRecord) (bool, error)
	FindNotification(ctx context.Context, db *gorm.DB, deliveryID string) (*NotificationRecord, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, record *NotificationRecord, processedAt time.Time) error
	ListNotifications(ctx context.Context, db *gorm.DB, filter NotificationFilter, page pagination.Pagination) ([]*NotificationRecord, error)
}

// DeliveryCache is a fast-path record of delivery ids already processed.
// The notification log stays authoritative; the cache only short-circuits.
type DeliveryCache interface {
	Seen(ctx context.Context, deliveryID string) (bool, error)
	Remember(ctx context.Context, deliveryID string, outcome Outcome) error
}
