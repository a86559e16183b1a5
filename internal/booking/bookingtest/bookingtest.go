// Package bookingtest provides an in-memory booking store for tests.
package bookingtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bookneo/internal/booking/domain"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE hotels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP
	)`,
	`CREATE TABLE bookings (
		id TEXT PRIMARY KEY,
		hotel_id TEXT NOT NULL,
		guest_name TEXT NOT NULL,
		guest_contact TEXT NOT NULL DEFAULT '',
		guest_email TEXT NOT NULL DEFAULT '',
		check_in_date DATE NOT NULL,
		check_out_date DATE NOT NULL,
		total_amount BIGINT NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		transaction_id TEXT,
		gateway_order_id TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE payment_notifications (
		id BIGINT PRIMARY KEY,
		delivery_id TEXT NOT NULL,
		event TEXT NOT NULL DEFAULT '',
		payment_id TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL DEFAULT '',
		order_id TEXT NOT NULL DEFAULT '',
		booking_id TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		received_at TIMESTAMP NOT NULL,
		processed_at TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX ux_payment_notifications_delivery_id ON payment_notifications(delivery_id)`,
}

// OpenDB returns a fresh shared-cache in-memory database with the booking schema.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:bookneo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

// Fixture describes a booking row to seed. Zero values get defaults.
type Fixture struct {
	ID            string
	HotelID       string
	HotelName     string
	GuestName     string
	GuestContact  string
	GuestEmail    string
	TotalAmount   int64
	PaymentStatus domain.PaymentStatus
	TransactionID *string
}

// Seed inserts the hotel and booking for f.
func Seed(t *testing.T, db *gorm.DB, f Fixture) {
	t.Helper()

	if f.HotelID == "" {
		f.HotelID = "htl_1"
	}
	if f.HotelName == "" {
		f.HotelName = "Sea View Residency"
	}
	if f.GuestName == "" {
		f.GuestName = "Asha Rao"
	}
	if f.TotalAmount == 0 {
		f.TotalAmount = 1500
	}
	if f.PaymentStatus == "" {
		f.PaymentStatus = domain.PaymentStatusPending
	}

	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	if err := db.Exec(
		`INSERT INTO hotels (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		f.HotelID, f.HotelName, now,
	).Error; err != nil {
		t.Fatalf("seed hotel: %v", err)
	}

	if err := db.Exec(
		`INSERT INTO bookings (id, hotel_id, guest_name, guest_contact, guest_email, check_in_date, check_out_date,
		  total_amount, payment_status, transaction_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.HotelID,
		f.GuestName,
		f.GuestContact,
		f.GuestEmail,
		time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC),
		f.TotalAmount,
		string(f.PaymentStatus),
		f.TransactionID,
		now,
		now,
	).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}

// Get reads the raw payment columns, bypassing the service under test.
func Get(t *testing.T, db *gorm.DB, id string) (domain.PaymentStatus, *string) {
	t.Helper()

	var row struct {
		PaymentStatus string
		TransactionID *string
	}
	if err := db.Raw(`SELECT payment_status, transaction_id FROM bookings WHERE id = ?`, id).Scan(&row).Error; err != nil {
		t.Fatalf("read booking: %v", err)
	}
	return domain.PaymentStatus(row.PaymentStatus), row.TransactionID
}

func Ptr(s string) *string { return &s }
