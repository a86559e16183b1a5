package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/bookneo/internal/booking/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT b.id, b.hotel_id, COALESCE(h.name, '') AS hotel_name, b.guest_name, b.guest_contact,
		        b.guest_email, b.check_in_date, b.check_out_date, b.total_amount, b.payment_status,
		        b.transaction_id, b.gateway_order_id, b.created_at, b.updated_at
		 FROM bookings b
		 LEFT JOIN hotels h ON h.id = b.hotel_id
		 WHERE b.id = ?`,
		id,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == "" {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, id string, patch domain.PaymentPatch, now time.Time) (int64, error) {
	updates := map[string]any{"updated_at": now}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = string(*patch.PaymentStatus)
	}
	if patch.TransactionID != nil {
		updates["transaction_id"] = *patch.TransactionID
	}
	if patch.GatewayOrderID != nil {
		updates["gateway_order_id"] = *patch.GatewayOrderID
	}

	result := db.WithContext(ctx).Table("bookings").Where("id = ?", id).Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repo) ApplyPayment(ctx context.Context, db *gorm.DB, id string, status domain.PaymentStatus, paymentID string, now time.Time) (int64, error) {
	var result *gorm.DB
	if status == domain.PaymentStatusCompleted {
		result = db.WithContext(ctx).Exec(
			`UPDATE bookings
			 SET payment_status = ?, transaction_id = ?, updated_at = ?
			 WHERE id = ? AND payment_status NOT IN (?, ?)`,
			string(status),
			paymentID,
			now,
			id,
			string(domain.PaymentStatusCompleted),
			string(domain.PaymentStatusRefunded),
		)
	} else {
		result = db.WithContext(ctx).Exec(
			`UPDATE bookings
			 SET payment_status = ?, updated_at = ?
			 WHERE id = ? AND payment_status NOT IN (?, ?)`,
			string(status),
			now,
			id,
			string(domain.PaymentStatusCompleted),
			string(domain.PaymentStatusRefunded),
		)
	}
	return result.RowsAffected, result.Error
}

func (r *repo) MarkRefunded(ctx context.Context, db *gorm.DB, paymentID string, now time.Time) (string, error) {
	var id string
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM bookings
		 WHERE transaction_id = ? AND payment_status = ?
		 ORDER BY updated_at DESC, id DESC
		 LIMIT 1`,
		paymentID,
		string(domain.PaymentStatusCompleted),
	).Scan(&id).Error
	if err != nil || id == "" {
		return "", err
	}

	result := db.WithContext(ctx).Exec(
		`UPDATE bookings SET payment_status = ?, updated_at = ?
		 WHERE id = ? AND transaction_id = ? AND payment_status = ?`,
		string(domain.PaymentStatusRefunded),
		now,
		id,
		paymentID,
		string(domain.PaymentStatusCompleted),
	)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", nil
	}
	return id, nil
}

func (r *repo) AttachOrder(ctx context.Context, db *gorm.DB, id, orderID string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE bookings SET gateway_order_id = ?, updated_at = ? WHERE id = ?`,
		orderID,
		now,
		id,
	)
	return result.RowsAffected, result.Error
}
