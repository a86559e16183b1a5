package email

import (
	"context"
	"strings"

	bookingdomain "github.com/smallbiznis/bookneo/internal/booking/domain"
)

const TemplateBookingConfirmation = "booking_confirmation"

// BookingConfirmation is the data rendered into the guest confirmation email.
type BookingConfirmation struct {
	GuestEmail   string
	GuestName    string
	BookingID    string
	HotelName    string
	CheckInDate  string
	CheckOutDate string
	TotalAmount  int64
}

// NewBookingConfirmation fills the confirmation from a booking, addressed to to.
func NewBookingConfirmation(b bookingdomain.Booking, to string) BookingConfirmation {
	return BookingConfirmation{
		GuestEmail:   strings.TrimSpace(to),
		GuestName:    b.GuestName,
		BookingID:    b.ID,
		HotelName:    b.HotelName,
		CheckInDate:  b.CheckInDate.UTC().Format("2006-01-02"),
		CheckOutDate: b.CheckOutDate.UTC().Format("2006-01-02"),
		TotalAmount:  b.TotalAmount,
	}
}

// SendBookingConfirmation renders and sends the confirmation to the guest.
func SendBookingConfirmation(ctx context.Context, p Provider, c BookingConfirmation) error {
	to := strings.TrimSpace(c.GuestEmail)
	if to == "" {
		return ErrNoRecipient
	}
	return p.SendTemplate(ctx, []string{to}, TemplateBookingConfirmation, c)
}
