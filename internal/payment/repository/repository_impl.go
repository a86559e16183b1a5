package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/smallbiznis/bookneo/internal/payment/domain"
	"github.com/smallbiznis/bookneo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertNotification(ctx context.Context, db *gorm.DB, record *domain.NotificationRecord) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO payment_notifications (
			id, delivery_id, event, payment_id, payment_status, order_id, booking_id,
			outcome, detail, payload, received_at, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (delivery_id) DO NOTHING`,
		record.ID,
		record.DeliveryID,
		record.Event,
		record.PaymentID,
		record.PaymentStatus,
		record.OrderID,
		record.BookingID,
		record.Outcome,
		record.Detail,
		record.Payload,
		record.ReceivedAt,
		record.ProcessedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindNotification(ctx context.Context, db *gorm.DB, deliveryID string) (*domain.NotificationRecord, error) {
	var item domain.NotificationRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, delivery_id, event, payment_id, payment_status, order_id, booking_id,
			outcome, detail, payload, received_at, processed_at
		 FROM payment_notifications
		 WHERE delivery_id = ?
		 LIMIT 1`,
		deliveryID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) MarkProcessed(ctx context.Context, db *gorm.DB, record *domain.NotificationRecord, processedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_notifications
		 SET outcome = ?, detail = ?, payment_id = ?, payment_status = ?, order_id = ?, booking_id = ?, processed_at = ?
		 WHERE id = ?`,
		record.Outcome,
		record.Detail,
		record.PaymentID,
		record.PaymentStatus,
		record.OrderID,
		record.BookingID,
		processedAt,
		record.ID,
	).Error
}

func (r *repo) ListNotifications(ctx context.Context, db *gorm.DB, filter domain.NotificationFilter, page pagination.Pagination) ([]*domain.NotificationRecord, error) {
	stmt := db.WithContext(ctx).Model(&domain.NotificationRecord{})
	if filter.BookingID != "" {
		stmt = stmt.Where("booking_id = ?", filter.BookingID)
	}
	if filter.PaymentID != "" {
		stmt = stmt.Where("payment_id = ?", filter.PaymentID)
	}
	if filter.Outcome != "" {
		stmt = stmt.Where("outcome = ?", filter.Outcome)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		receivedAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		id, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		stmt = stmt.Where("(received_at < ? OR (received_at = ? AND id < ?))", receivedAt, receivedAt, id)
	}

	var items []*domain.NotificationRecord
	err := stmt.
		Order("received_at desc, id desc").
		Limit(page.Limit() + 1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
