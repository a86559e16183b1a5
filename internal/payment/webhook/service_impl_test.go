package webhook_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/bookneo/internal/booking/bookingtest"
	bookingdomain "github.com/smallbiznis/bookneo/internal/booking/domain"
	bookingrepo "github.com/smallbiznis/bookneo/internal/booking/repository"
	bookingservice "github.com/smallbiznis/bookneo/internal/booking/service"
	"github.com/smallbiznis/bookneo/internal/clock"
	"github.com/smallbiznis/bookneo/internal/config"
	obsmetrics "github.com/smallbiznis/bookneo/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
	"github.com/smallbiznis/bookneo/internal/payment/gateway"
	paymentrepo "github.com/smallbiznis/bookneo/internal/payment/repository"
	"github.com/smallbiznis/bookneo/internal/payment/webhook"
	"github.com/smallbiznis/bookneo/internal/providers/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test_secret"

type sentEmail struct {
	to   []string
	data email.BookingConfirmation
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return f.err
}

func (f *fakeEmail) SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	conf, _ := data.(email.BookingConfirmation)
	f.sent = append(f.sent, sentEmail{to: to, data: conf})
	return nil
}

func (f *fakeEmail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSlack struct {
	mu       sync.Mutex
	channels []string
	messages []string
}

func (f *fakeSlack) PostMessage(ctx context.Context, channelID string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channelID)
	f.messages = append(f.messages, message)
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	seen map[string]paymentdomain.Outcome
}

func (f *fakeCache) Seen(ctx context.Context, deliveryID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[deliveryID]
	return ok, nil
}

func (f *fakeCache) Remember(ctx context.Context, deliveryID string, outcome paymentdomain.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string]paymentdomain.Outcome{}
	}
	f.seen[deliveryID] = outcome
	return nil
}

type harness struct {
	db     *gorm.DB
	svc    *webhook.Service
	email  *fakeEmail
	slack  *fakeSlack
	cache  *fakeCache
	ctx    context.Context
	secret string
}

type harnessOption func(*webhook.Params, *harness)

func withCache() harnessOption {
	return func(p *webhook.Params, h *harness) {
		h.cache = &fakeCache{}
		p.Cache = h.cache
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	db := bookingtest.OpenDB(t)
	log := zaptest.NewLogger(t)
	clk := clock.NewFakeClock(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	h := &harness{
		db:     db,
		email:  &fakeEmail{},
		slack:  &fakeSlack{},
		ctx:    context.Background(),
		secret: webhookSecret,
	}

	params := webhook.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Cfg: config.Config{
			Email: config.EmailConfig{FallbackDomain: "bookneoapp.com"},
			Slack: config.SlackConfig{Channel: "#payments-alerts"},
		},
		Creds: config.NewStaticGatewayCredentials(config.GatewayCredentials{
			KeyID:         "rzp_test_key",
			SecretKey:     "rzp_test_secret",
			WebhookSecret: webhookSecret,
		}),
		Repo: paymentrepo.Provide(),
		Bookings: bookingservice.New(bookingservice.Params{
			DB:    db,
			Log:   log,
			Clock: clk,
			Repo:  bookingrepo.Provide(),
		}),
		Email:          h.email,
		Slack:          h.slack,
		PaymentMetrics: obsmetrics.NewPaymentMetrics(prometheus.NewRegistry(), obsmetrics.Config{}),
	}
	for _, opt := range opts {
		opt(&params, h)
	}
	h.svc = webhook.NewService(params)
	return h
}

func notificationBody(bookingID, paymentID, status string) []byte {
	event := "payment.captured"
	if status != "captured" {
		event = "payment.failed"
	}
	notes := `[]`
	if bookingID != "" {
		notes = fmt.Sprintf(`{"bookingId":%q,"customerPhone":"9876543210"}`, bookingID)
	}
	return []byte(fmt.Sprintf(
		`{"entity":"event","event":%q,"payload":{"payment":{"entity":{"id":%q,"status":%q,"order_id":"order_1","amount":150000,"currency":"INR","notes":[]}},"order":{"entity":{"id":"order_1","notes":%s}}}}`,
		event, paymentID, status, notes,
	))
}

func (h *harness) deliver(t *testing.T, body []byte, deliveryID string) (paymentdomain.Result, error) {
	t.Helper()
	return h.svc.Reconcile(h.ctx, paymentdomain.Delivery{
		Body:       body,
		Signature:  gateway.Sign(body, h.secret),
		DeliveryID: deliveryID,
	})
}

func (h *harness) notificationCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Raw(`SELECT COUNT(*) FROM payment_notifications`).Scan(&n).Error)
	return n
}

func (h *harness) storedOutcome(t *testing.T, deliveryID string) (string, bool) {
	t.Helper()
	var row struct {
		Outcome     string
		ProcessedAt *time.Time
	}
	require.NoError(t, h.db.Raw(`SELECT outcome, processed_at FROM payment_notifications WHERE delivery_id = ?`, deliveryID).Scan(&row).Error)
	return row.Outcome, row.ProcessedAt != nil
}

func TestCapturedNotificationCompletesBooking(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestEmail: "asha@example.com", TotalAmount: 1500})

	result, err := h.deliver(t, notificationBody("bk_1", "pay_1", "captured"), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeCompleted, result.Outcome)
	assert.Equal(t, "bk_1", result.BookingID)
	assert.Equal(t, "pay_1", result.PaymentID)
	assert.Equal(t, paymentdomain.ConfirmationSent, result.Confirmation)

	status, txn := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusCompleted, status)
	require.NotNil(t, txn)
	assert.Equal(t, "pay_1", *txn)

	require.Equal(t, 1, h.email.count())
	assert.Equal(t, []string{"asha@example.com"}, h.email.sent[0].to)
	assert.Equal(t, "Sea View Residency", h.email.sent[0].data.HotelName)
	assert.Equal(t, "2026-10-20", h.email.sent[0].data.CheckInDate)
	assert.Equal(t, int64(1500), h.email.sent[0].data.TotalAmount)

	outcome, processed := h.storedOutcome(t, "evt_1")
	assert.Equal(t, "completed", outcome)
	assert.True(t, processed)
}

func TestRedeliveryIsIdempotent(t *testing.T) {
	cases := []struct {
		name   string
		second string
	}{
		{name: "same_delivery_id", second: "evt_1"},
		{name: "new_delivery_id", second: "evt_2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestEmail: "asha@example.com"})
			body := notificationBody("bk_1", "pay_1", "captured")

			first, err := h.deliver(t, body, "evt_1")
			require.NoError(t, err)
			require.Equal(t, paymentdomain.OutcomeCompleted, first.Outcome)

			second, err := h.deliver(t, body, tc.second)
			require.NoError(t, err)
			assert.Equal(t, paymentdomain.OutcomeReplayed, second.Outcome)
			assert.Equal(t, paymentdomain.ConfirmationNone, second.Confirmation)

			status, txn := bookingtest.Get(t, h.db, "bk_1")
			assert.Equal(t, bookingdomain.PaymentStatusCompleted, status)
			assert.Equal(t, "pay_1", *txn)
			assert.Equal(t, 1, h.email.count())
		})
	}
}

func TestMissingDeliveryIDFallsBackToBodyDigest(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestEmail: "asha@example.com"})
	body := notificationBody("bk_1", "pay_1", "captured")

	first, err := h.deliver(t, body, "")
	require.NoError(t, err)
	assert.Regexp(t, `^sha256:[0-9a-f]{64}$`, first.DeliveryID)

	second, err := h.deliver(t, body, "")
	require.NoError(t, err)
	assert.Equal(t, first.DeliveryID, second.DeliveryID)
	assert.Equal(t, paymentdomain.OutcomeReplayed, second.Outcome)
	assert.Equal(t, int64(1), h.notificationCount(t))
	assert.Equal(t, 1, h.email.count())
}

func TestConflictingPaymentIsReportedNotApplied(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{
		ID:            "bk_1",
		GuestEmail:    "asha@example.com",
		PaymentStatus: bookingdomain.PaymentStatusCompleted,
		TransactionID: bookingtest.Ptr("pay_1"),
	})

	result, err := h.deliver(t, notificationBody("bk_1", "pay_2", "captured"), "evt_2")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeConflict, result.Outcome)

	status, txn := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusCompleted, status)
	assert.Equal(t, "pay_1", *txn)
	assert.Zero(t, h.email.count())

	require.Len(t, h.slack.messages, 1)
	assert.Equal(t, "#payments-alerts", h.slack.channels[0])
	assert.Contains(t, h.slack.messages[0], "bk_1")
	assert.Contains(t, h.slack.messages[0], "pay_2")

	outcome, processed := h.storedOutcome(t, "evt_2")
	assert.Equal(t, "conflict", outcome)
	assert.True(t, processed)
}

func TestFailedAfterCompletedSamePaymentIsConflict(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{
		ID:            "bk_1",
		PaymentStatus: bookingdomain.PaymentStatusCompleted,
		TransactionID: bookingtest.Ptr("pay_1"),
	})

	result, err := h.deliver(t, notificationBody("bk_1", "pay_1", "failed"), "evt_3")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeConflict, result.Outcome)

	status, txn := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusCompleted, status)
	assert.Equal(t, "pay_1", *txn)
}

func TestGatewayStatusMappingIsTotal(t *testing.T) {
	cases := []struct {
		status  string
		want    bookingdomain.PaymentStatus
		outcome paymentdomain.Outcome
	}{
		{status: "captured", want: bookingdomain.PaymentStatusCompleted, outcome: paymentdomain.OutcomeCompleted},
		{status: "failed", want: bookingdomain.PaymentStatusFailed, outcome: paymentdomain.OutcomeFailed},
		{status: "authorized", want: bookingdomain.PaymentStatusFailed, outcome: paymentdomain.OutcomeFailed},
		{status: "refunded", want: bookingdomain.PaymentStatusFailed, outcome: paymentdomain.OutcomeFailed},
		{status: "something_new", want: bookingdomain.PaymentStatusFailed, outcome: paymentdomain.OutcomeFailed},
		{status: "", want: bookingdomain.PaymentStatusFailed, outcome: paymentdomain.OutcomeFailed},
	}

	for _, tc := range cases {
		t.Run("status_"+tc.status, func(t *testing.T) {
			h := newHarness(t)
			bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestEmail: "asha@example.com"})

			result, err := h.deliver(t, notificationBody("bk_1", "pay_1", tc.status), "evt_"+tc.status)
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, result.Outcome)

			status, _ := bookingtest.Get(t, h.db, "bk_1")
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestFailedNotificationLeavesTransactionUnset(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1"})

	_, err := h.deliver(t, notificationBody("bk_1", "pay_1", "failed"), "evt_1")
	require.NoError(t, err)

	status, txn := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusFailed, status)
	assert.Nil(t, txn)
	assert.Zero(t, h.email.count())

	result, err := h.deliver(t, notificationBody("bk_1", "pay_2", "captured"), "evt_2")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeCompleted, result.Outcome)
	_, txn = bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, "pay_2", *txn)
}

func TestUnresolvableNotificationsAreAcknowledged(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{name: "empty_notes_array", body: notificationBody("", "pay_1", "captured")},
		{name: "unknown_booking", body: notificationBody("bk_missing", "pay_1", "captured")},
		{name: "missing_payment", body: []byte(`{"entity":"event","event":"order.paid","payload":{"order":{"entity":{"id":"order_1","notes":{"bookingId":"bk_1"}}}}}`)},
		{name: "empty_payload", body: []byte(`{}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestEmail: "asha@example.com"})

			result, err := h.deliver(t, tc.body, "evt_"+tc.name)
			require.NoError(t, err)
			assert.Equal(t, paymentdomain.OutcomeUnresolvable, result.Outcome)

			status, txn := bookingtest.Get(t, h.db, "bk_1")
			assert.Equal(t, bookingdomain.PaymentStatusPending, status)
			assert.Nil(t, txn)
			assert.Zero(t, h.email.count())

			outcome, processed := h.storedOutcome(t, "evt_"+tc.name)
			assert.Equal(t, "unresolvable", outcome)
			assert.True(t, processed)
		})
	}
}

func TestBookingIDFallsBackToPaymentNotes(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1"})
	body := []byte(`{"entity":"event","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","status":"captured","order_id":"order_1","notes":{"bookingId":"bk_1"}}}}}`)

	result, err := h.deliver(t, body, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeCompleted, result.Outcome)
}

func TestInvalidSignatureIsRejectedWithoutMutation(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1"})
	body := notificationBody("bk_1", "pay_1", "captured")

	cases := map[string]string{
		"wrong_secret": gateway.Sign(body, "not-the-secret"),
		"empty":        "",
		"garbage":      "deadbeef",
	}
	for name, signature := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.svc.Reconcile(h.ctx, paymentdomain.Delivery{Body: body, Signature: signature, DeliveryID: "evt_" + name})
			require.ErrorIs(t, err, paymentdomain.ErrUnauthenticated)

			status, txn := bookingtest.Get(t, h.db, "bk_1")
			assert.Equal(t, bookingdomain.PaymentStatusPending, status)
			assert.Nil(t, txn)
		})
	}
	assert.Zero(t, h.notificationCount(t))
	assert.Zero(t, h.email.count())
}

func TestUndecodableAuthenticatedBody(t *testing.T) {
	h := newHarness(t)

	_, err := h.deliver(t, []byte(`{"payload":`), "evt_1")
	require.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
	assert.Zero(t, h.notificationCount(t))
}

func TestConfirmationFailureDoesNotReverseCommit(t *testing.T) {
	h := newHarness(t)
	h.email.err = errors.New("smtp: 421 service not available")
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestEmail: "asha@example.com"})

	result, err := h.deliver(t, notificationBody("bk_1", "pay_1", "captured"), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeCompleted, result.Outcome)
	assert.Equal(t, paymentdomain.ConfirmationFailed, result.Confirmation)
	assert.ErrorIs(t, result.ConfirmationErr, paymentdomain.ErrSideEffectFailure)

	status, _ := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusCompleted, status)
}

func TestConfirmationUsesContactFallbackAddress(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestContact: "9876543210"})

	result, err := h.deliver(t, notificationBody("bk_1", "pay_1", "captured"), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.ConfirmationSent, result.Confirmation)
	require.Equal(t, 1, h.email.count())
	assert.Equal(t, []string{"9876543210@bookneoapp.com"}, h.email.sent[0].to)
}

func TestConfirmationSkippedWithoutRecipient(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1"})

	result, err := h.deliver(t, notificationBody("bk_1", "pay_1", "captured"), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeCompleted, result.Outcome)
	assert.Equal(t, paymentdomain.ConfirmationSkipped, result.Confirmation)
	assert.Zero(t, h.email.count())
}

func TestDeliveryCacheShortCircuitsAndIsWrittenAfterProcessing(t *testing.T) {
	h := newHarness(t, withCache())
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1"})

	_, err := h.deliver(t, notificationBody("bk_1", "pay_1", "captured"), "evt_1")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeCompleted, h.cache.seen["evt_1"])

	_ = h.cache.Remember(h.ctx, "evt_cached", paymentdomain.OutcomeCompleted)
	result, err := h.deliver(t, notificationBody("bk_1", "pay_9", "failed"), "evt_cached")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeReplayed, result.Outcome)
	assert.Equal(t, int64(1), h.notificationCount(t))

	status, txn := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusCompleted, status)
	assert.Equal(t, "pay_1", *txn)
}

func TestRefundedBookingReplaysCapturedRedelivery(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{
		ID:            "bk_1",
		PaymentStatus: bookingdomain.PaymentStatusRefunded,
		TransactionID: bookingtest.Ptr("pay_1"),
	})

	result, err := h.deliver(t, notificationBody("bk_1", "pay_1", "captured"), "evt_late")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeReplayed, result.Outcome)

	status, _ := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusRefunded, status)
}

func TestConcurrentDuplicateDeliveriesCompleteOnce(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestEmail: "asha@example.com"})
	body := notificationBody("bk_1", "pay_1", "captured")

	const workers = 8
	outcomes := make([]paymentdomain.Outcome, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// Half the workers share one delivery id, the rest carry their own.
			deliveryID := "evt_shared"
			if i%2 == 1 {
				deliveryID = fmt.Sprintf("evt_%d", i)
			}
			result, err := h.deliver(t, body, deliveryID)
			outcomes[i], errs[i] = result.Outcome, err
		}(i)
	}
	close(start)
	wg.Wait()

	completed := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		switch outcomes[i] {
		case paymentdomain.OutcomeCompleted:
			completed++
		case paymentdomain.OutcomeReplayed:
		default:
			t.Fatalf("worker %d: unexpected outcome %q", i, outcomes[i])
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, h.email.count())

	status, txn := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusCompleted, status)
	require.NotNil(t, txn)
	assert.Equal(t, "pay_1", *txn)
	assert.Equal(t, int64(1+workers/2), h.notificationCount(t))
}

func TestConcurrentCompetingPaymentsYieldOneCompletion(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1", GuestEmail: "asha@example.com"})

	const workers = 6
	outcomes := make([]paymentdomain.Outcome, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			body := notificationBody("bk_1", fmt.Sprintf("pay_%d", i), "captured")
			result, err := h.deliver(t, body, fmt.Sprintf("evt_%d", i))
			outcomes[i], errs[i] = result.Outcome, err
		}(i)
	}
	close(start)
	wg.Wait()

	winner := ""
	conflicts := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		switch outcomes[i] {
		case paymentdomain.OutcomeCompleted:
			require.Empty(t, winner, "more than one payment completed the booking")
			winner = fmt.Sprintf("pay_%d", i)
		case paymentdomain.OutcomeConflict:
			conflicts++
		default:
			t.Fatalf("worker %d: unexpected outcome %q", i, outcomes[i])
		}
	}
	require.NotEmpty(t, winner)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, h.email.count())

	status, txn := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusCompleted, status)
	require.NotNil(t, txn)
	assert.Equal(t, winner, *txn)

	h.slack.mu.Lock()
	defer h.slack.mu.Unlock()
	assert.Len(t, h.slack.messages, workers-1)
}

func TestScalarNotesAreAcknowledgedAsUnresolvable(t *testing.T) {
	h := newHarness(t)
	bookingtest.Seed(t, h.db, bookingtest.Fixture{ID: "bk_1"})
	body := []byte(`{"entity":"event","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","status":"captured","order_id":"order_1","notes":"bk_1"}}}}`)

	result, err := h.deliver(t, body, "evt_scalar")
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeUnresolvable, result.Outcome)

	status, txn := bookingtest.Get(t, h.db, "bk_1")
	assert.Equal(t, bookingdomain.PaymentStatusPending, status)
	assert.Nil(t, txn)

	outcome, processed := h.storedOutcome(t, "evt_scalar")
	assert.Equal(t, "unresolvable", outcome)
	assert.True(t, processed)
}
