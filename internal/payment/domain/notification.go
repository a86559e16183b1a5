package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/bookneo/internal/booking/domain"
	"gorm.io/datatypes"
)

// GatewayStatusCaptured is the only gateway payment status that settles a booking.
const GatewayStatusCaptured = "captured"

// MapStatus maps every gateway payment status onto exactly one booking outcome.
func MapStatus(gatewayStatus string) bookingdomain.PaymentStatus {
	if strings.EqualFold(strings.TrimSpace(gatewayStatus), GatewayStatusCaptured) {
		return bookingdomain.PaymentStatusCompleted
	}
	return bookingdomain.PaymentStatusFailed
}

// PaymentNotification is the inbound webhook body. Every nested record may be absent.
type PaymentNotification struct {
	Entity  string              `json:"entity"`
	Event   string              `json:"event"`
	Payload NotificationPayload `json:"payload"`
}

type NotificationPayload struct {
	Payment *PaymentEnvelope `json:"payment"`
	Order   *OrderEnvelope   `json:"order"`
}

type PaymentEnvelope struct {
	Entity PaymentEntity `json:"entity"`
}

type PaymentEntity struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Notes    Notes  `json:"notes"`
}

type OrderEnvelope struct {
	Entity OrderEntity `json:"entity"`
}

type OrderEntity struct {
	ID    string `json:"id"`
	Notes Notes  `json:"notes"`
}

// Notes is the gateway's free-form metadata. The gateway sends an empty JSON array
// instead of an object when no notes were set; any non-object value reads as no notes.
type Notes struct {
	BookingID     *string
	CustomerPhone *string
}

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*n = Notes{}
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*n = Notes{
		BookingID:     noteString(raw["bookingId"]),
		CustomerPhone: noteString(raw["customerPhone"]),
	}
	return nil
}

func noteString(v any) *string {
	var s string
	switch value := v.(type) {
	case string:
		s = strings.TrimSpace(value)
	case float64:
		s = strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

func (n PaymentNotification) Payment() (PaymentEntity, bool) {
	if n.Payload.Payment == nil {
		return PaymentEntity{}, false
	}
	return n.Payload.Payment.Entity, true
}

// OrderID prefers the order record and falls back to the payment's order reference.
func (n PaymentNotification) OrderID() string {
	if n.Payload.Order != nil && n.Payload.Order.Entity.ID != "" {
		return n.Payload.Order.Entity.ID
	}
	if n.Payload.Payment != nil {
		return n.Payload.Payment.Entity.OrderID
	}
	return ""
}

// BookingID reads the booking correlation from order notes, then payment notes,
// which the gateway copies from the order.
func (n PaymentNotification) BookingID() (string, bool) {
	if n.Payload.Order != nil && n.Payload.Order.Entity.Notes.BookingID != nil {
		return *n.Payload.Order.Entity.Notes.BookingID, true
	}
	if n.Payload.Payment != nil && n.Payload.Payment.Entity.Notes.BookingID != nil {
		return *n.Payload.Payment.Entity.Notes.BookingID, true
	}
	return "", false
}

// NotificationRecord is one row per distinct gateway delivery.
type NotificationRecord struct {
	ID            snowflake.ID   `json:"id" gorm:"primaryKey"`
	DeliveryID    string         `json:"delivery_id" gorm:"type:text;not null;uniqueIndex"`
	Event         string         `json:"event"`
	PaymentID     string         `json:"payment_id"`
	PaymentStatus string         `json:"payment_status"`
	OrderID       string         `json:"order_id"`
	BookingID     string         `json:"booking_id"`
	Outcome       string         `json:"outcome"`
	Detail        string         `json:"detail,omitempty"`
	Payload       datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt    time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt   *time.Time     `json:"processed_at"`
}

func (NotificationRecord) TableName() string { return "payment_notifications" }
