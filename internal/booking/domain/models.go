package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// Settled reports whether the booking has been paid by a specific payment id.
func (s PaymentStatus) Settled() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusRefunded
}

// Booking is the payment-relevant projection of a reservation. HotelName is joined from hotels.
type Booking struct {
	ID             string        `gorm:"primaryKey" json:"id"`
	HotelID        string        `gorm:"not null" json:"hotelId"`
	HotelName      string        `gorm:"->" json:"hotelName"`
	GuestName      string        `gorm:"not null" json:"guestName"`
	GuestContact   string        `json:"guestContact"`
	GuestEmail     string        `json:"guestEmail,omitempty"`
	CheckInDate    time.Time     `json:"checkInDate"`
	CheckOutDate   time.Time     `json:"checkOutDate"`
	TotalAmount    int64         `json:"totalAmount"`
	PaymentStatus  PaymentStatus `gorm:"not null;default:pending" json:"paymentStatus"`
	TransactionID  *string       `json:"transactionId,omitempty"`
	GatewayOrderID *string       `json:"gatewayOrderId,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// PaymentPatch is a manual update of payment fields; nil fields are left untouched.
type PaymentPatch struct {
	PaymentStatus  *PaymentStatus
	TransactionID  *string
	GatewayOrderID *string
}

func (p PaymentPatch) Empty() bool {
	return p.PaymentStatus == nil && p.TransactionID == nil && p.GatewayOrderID == nil
}
