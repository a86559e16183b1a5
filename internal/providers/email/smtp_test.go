package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/smallbiznis/bookneo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type sentMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newCapturingSMTP(cfg Config) (*SMTPProvider, *[]sentMail) {
	var sent []sentMail
	p := NewSMTP(cfg)
	p.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)})
		return nil
	}
	return p, &sent
}

func TestSendBookingConfirmationRendersTemplate(t *testing.T) {
	p, sent := newCapturingSMTP(Config{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "bookings@bookneoapp.com"})

	err := SendBookingConfirmation(context.Background(), p, BookingConfirmation{
		GuestEmail:   "asha@example.com",
		GuestName:    "Asha Rao",
		BookingID:    "bk_1",
		HotelName:    "Sea View Residency",
		CheckInDate:  "2026-10-20",
		CheckOutDate: "2026-10-22",
		TotalAmount:  1500,
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.NotNil(t, mail.auth)
	assert.Equal(t, "bookings@bookneoapp.com", mail.from)
	assert.Equal(t, []string{"asha@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Booking Confirmed - Sea View Residency\r\n")
	assert.Contains(t, mail.msg, "bk_1")
	assert.Contains(t, mail.msg, "2026-10-20")
	assert.Contains(t, mail.msg, "Asha Rao")
}

func TestSendBookingConfirmationRequiresRecipient(t *testing.T) {
	p, sent := newCapturingSMTP(Config{Host: "smtp.example.com", Port: 25})

	err := SendBookingConfirmation(context.Background(), p, BookingConfirmation{GuestEmail: "  "})
	require.ErrorIs(t, err, ErrNoRecipient)
	assert.Empty(t, *sent)
}

func TestSendWithoutUsernameSkipsAuth(t *testing.T) {
	p, sent := newCapturingSMTP(Config{Host: "localhost", Port: 1025, From: "a@b.c"})

	require.NoError(t, p.Send(context.Background(), []string{"x@y.z"}, "hi", "<p>hi</p>"))
	require.Len(t, *sent, 1)
	assert.Nil(t, (*sent)[0].auth)
}

func TestSendHonoursCancelledContext(t *testing.T) {
	p, sent := newCapturingSMTP(Config{Host: "localhost", Port: 1025})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, p.Send(ctx, []string{"x@y.z"}, "hi", "body"), context.Canceled)
	assert.Empty(t, *sent)
}

func TestRenderEscapesGuestInput(t *testing.T) {
	_, body, err := Render(TemplateBookingConfirmation, BookingConfirmation{GuestName: "<script>x</script>", HotelName: "H"})
	require.NoError(t, err)
	assert.False(t, strings.Contains(body, "<script>"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("missing", nil)
	require.Error(t, err)
}

func TestNewFromConfigFallsBackToNoOp(t *testing.T) {
	p := NewFromConfig(config.Config{}, zaptest.NewLogger(t))
	_, ok := p.(*NoOpProvider)
	assert.True(t, ok)

	p = NewFromConfig(config.Config{Email: config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587}}, zaptest.NewLogger(t))
	_, ok = p.(*SMTPProvider)
	assert.True(t, ok)
}
