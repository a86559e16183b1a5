package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/bookneo/internal/booking/domain"
	"github.com/smallbiznis/bookneo/internal/clock"
	"github.com/smallbiznis/bookneo/internal/config"
	obscontext "github.com/smallbiznis/bookneo/internal/observability/context"
	"github.com/smallbiznis/bookneo/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bookneo/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
	"github.com/smallbiznis/bookneo/internal/payment/gateway"
	"github.com/smallbiznis/bookneo/internal/providers/email"
	"github.com/smallbiznis/bookneo/internal/providers/slack"
	"github.com/smallbiznis/bookneo/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const sideEffectTimeout = 30 * time.Second

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Cfg            config.Config
	Creds          gateway.CredentialsSource
	Repo           paymentdomain.Repository
	Bookings       bookingdomain.Service
	Email          email.Provider
	Slack          slack.Provider              `optional:"true"`
	Cache          paymentdomain.DeliveryCache `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics         `optional:"true"`
	PaymentMetrics *obsmetrics.PaymentMetrics  `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	creds          gateway.CredentialsSource
	repo           paymentdomain.Repository
	bookings       bookingdomain.Service
	email          email.Provider
	slack          slack.Provider
	cache          paymentdomain.DeliveryCache
	obsMetrics     *obsmetrics.Metrics
	paymentMetrics *obsmetrics.PaymentMetrics

	alertChannel   string
	fallbackDomain string
}

func NewService(p Params) *Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("payment.webhook"),
		genID:          p.GenID,
		clock:          p.Clock,
		creds:          p.Creds,
		repo:           p.Repo,
		bookings:       p.Bookings,
		email:          p.Email,
		slack:          p.Slack,
		cache:          p.Cache,
		obsMetrics:     p.ObsMetrics,
		paymentMetrics: p.PaymentMetrics,
		alertChannel:   strings.TrimSpace(p.Cfg.Slack.Channel),
		fallbackDomain: strings.TrimPrefix(strings.TrimSpace(p.Cfg.Email.FallbackDomain), "@"),
	}
}

// Reconcile authenticates a gateway delivery and applies it to its booking. Every
// authenticated delivery that reaches a defined outcome returns a nil error.
func (s *Service) Reconcile(ctx context.Context, delivery paymentdomain.Delivery) (paymentdomain.Result, error) {
	started := time.Now()

	if !gateway.VerifySignature(delivery.Body, delivery.Signature, s.creds.Get().WebhookSecret) {
		logger.WithContext(ctx, s.log).Warn("webhook signature rejected", zap.Int("body_bytes", len(delivery.Body)))
		s.obsMetrics.RecordReconcileOutcome(ctx, "", "unauthenticated")
		return paymentdomain.Result{}, paymentdomain.ErrUnauthenticated
	}

	deliveryID := strings.TrimSpace(delivery.DeliveryID)
	if deliveryID == "" {
		sum := sha256.Sum256(delivery.Body)
		deliveryID = "sha256:" + hex.EncodeToString(sum[:])
	}
	ctx = obscontext.WithDeliveryID(ctx, deliveryID)
	log := logger.WithContext(ctx, s.log)
	result := paymentdomain.Result{DeliveryID: deliveryID}

	if s.cachedDelivery(ctx, log, deliveryID) {
		result.Outcome = paymentdomain.OutcomeReplayed
		s.finish(ctx, "", result, started)
		return result, nil
	}

	var notification paymentdomain.PaymentNotification
	if err := json.Unmarshal(delivery.Body, &notification); err != nil {
		log.Error("authenticated webhook body is not decodable", zap.Error(err))
		return result, fmt.Errorf("%w: %v", paymentdomain.ErrInvalidPayload, err)
	}

	payment, _ := notification.Payment()
	bookingID, _ := notification.BookingID()
	result.BookingID = bookingID
	result.PaymentID = payment.ID
	log = logger.WithPayment(log, bookingID, payment.ID)

	now := s.clock.Now()
	record := &paymentdomain.NotificationRecord{
		ID:            s.genID.Generate(),
		DeliveryID:    deliveryID,
		Event:         notification.Event,
		PaymentID:     payment.ID,
		PaymentStatus: payment.Status,
		OrderID:       notification.OrderID(),
		BookingID:     bookingID,
		Payload:       datatypes.JSON(delivery.Body),
		ReceivedAt:    now,
	}

	inserted, err := s.repo.InsertNotification(ctx, s.db, record)
	if err != nil {
		s.paymentMetrics.IncReconcileError(err)
		return result, err
	}
	if !inserted {
		stored, err := s.repo.FindNotification(ctx, s.db, deliveryID)
		if err != nil {
			s.paymentMetrics.IncReconcileError(err)
			return result, err
		}
		if stored != nil && stored.ProcessedAt != nil {
			log.Info("webhook delivery already processed", zap.String("previous_outcome", stored.Outcome))
			s.paymentMetrics.IncDedupHit()
			s.remember(ctx, log, deliveryID, paymentdomain.OutcomeReplayed)
			result.Outcome = paymentdomain.OutcomeReplayed
			s.finish(ctx, notification.Event, result, started)
			return result, nil
		}
		if stored != nil {
			record.ID = stored.ID
		}
	}

	if err := s.apply(ctx, log, notification, payment, bookingID, record, &result); err != nil {
		s.paymentMetrics.IncReconcileError(err)
		return result, err
	}

	record.Outcome = string(result.Outcome)
	if err := s.repo.MarkProcessed(ctx, s.db, record, s.clock.Now()); err != nil {
		s.paymentMetrics.IncReconcileError(err)
		return result, err
	}
	s.remember(ctx, log, deliveryID, result.Outcome)

	log.Info("webhook reconciled",
		zap.String("event", notification.Event),
		zap.String("outcome", string(result.Outcome)),
		zap.String("payment_status", payment.Status),
	)
	s.finish(ctx, notification.Event, result, started)
	return result, nil
}

func (s *Service) apply(
	ctx context.Context,
	log *zap.Logger,
	notification paymentdomain.PaymentNotification,
	payment paymentdomain.PaymentEntity,
	bookingID string,
	record *paymentdomain.NotificationRecord,
	result *paymentdomain.Result,
) error {
	if payment.ID == "" {
		s.unresolvable(log, record, result, "payment id missing")
		return nil
	}
	if bookingID == "" {
		s.unresolvable(log, record, result, "booking id missing from order notes")
		return nil
	}

	target := paymentdomain.MapStatus(payment.Status)
	applied, err := s.bookings.ApplyPayment(ctx, bookingdomain.ApplyPaymentRequest{
		BookingID: bookingID,
		PaymentID: payment.ID,
		Status:    target,
	})
	switch {
	case errors.Is(err, bookingdomain.ErrNotFound):
		s.unresolvable(log, record, result, "booking not found")
		return nil
	case err != nil:
		return err
	}

	switch applied.Outcome {
	case bookingdomain.ApplyOutcomeReplayed:
		result.Outcome = paymentdomain.OutcomeReplayed
		record.Detail = "booking already reflects this payment"
	case bookingdomain.ApplyOutcomeConflict:
		result.Outcome = paymentdomain.OutcomeConflict
		record.Detail = conflictDetail(applied.Booking, payment.ID, target)
		s.reportConflict(ctx, log, notification, applied.Booking, payment, target)
	default:
		if target == bookingdomain.PaymentStatusCompleted {
			result.Outcome = paymentdomain.OutcomeCompleted
		} else {
			result.Outcome = paymentdomain.OutcomeFailed
		}
	}

	if applied.Transitioned() {
		s.sendConfirmation(ctx, log, applied.Booking, result)
		if result.ConfirmationErr != nil {
			record.Detail = result.ConfirmationErr.Error()
		}
	}
	return nil
}

func (s *Service) unresolvable(log *zap.Logger, record *paymentdomain.NotificationRecord, result *paymentdomain.Result, reason string) {
	log.Warn("webhook cannot be correlated to a booking",
		zap.String("reason", reason),
		zap.String("order_id", record.OrderID),
	)
	record.Detail = reason
	result.Outcome = paymentdomain.OutcomeUnresolvable
}

func conflictDetail(booking bookingdomain.Booking, paymentID string, target bookingdomain.PaymentStatus) string {
	current := ""
	if booking.TransactionID != nil {
		current = *booking.TransactionID
	}
	return fmt.Sprintf("%s: booking is %s by %s, notification reports %s for %s",
		paymentdomain.ErrConflictingPayment, booking.PaymentStatus, current, target, paymentID)
}

func (s *Service) reportConflict(
	ctx context.Context,
	log *zap.Logger,
	notification paymentdomain.PaymentNotification,
	booking bookingdomain.Booking,
	payment paymentdomain.PaymentEntity,
	target bookingdomain.PaymentStatus,
) {
	current := ""
	if booking.TransactionID != nil {
		current = *booking.TransactionID
	}
	log.Warn("conflicting payment for settled booking",
		zap.Error(paymentdomain.ErrConflictingPayment),
		zap.String("booking_status", string(booking.PaymentStatus)),
		zap.String("booking_transaction_id", current),
		zap.String("payment_status", payment.Status),
		zap.String("target_status", string(target)),
		zap.String("event", notification.Event),
	)
	s.paymentMetrics.IncConflict()

	if s.slack == nil {
		return
	}
	alertCtx, cancel := context.WithTimeout(correlation.DetachedContext(ctx), sideEffectTimeout)
	defer cancel()
	message := fmt.Sprintf(":warning: Conflicting payment for booking %s: booking is %s by %s, gateway reports %s (%s) from payment %s",
		booking.ID, booking.PaymentStatus, current, payment.Status, notification.Event, payment.ID)
	if err := s.slack.PostMessage(alertCtx, s.alertChannel, message); err != nil {
		log.Error("failed to post payment anomaly", zap.Error(err))
	}
}

// sendConfirmation runs after the booking commit. Its failure is recorded on the result only.
func (s *Service) sendConfirmation(ctx context.Context, log *zap.Logger, booking bookingdomain.Booking, result *paymentdomain.Result) {
	to := s.recipient(booking)
	if to == "" || booking.HotelName == "" || s.email == nil {
		log.Info("booking confirmation skipped",
			zap.Bool("has_recipient", to != ""),
			zap.Bool("has_hotel", booking.HotelName != ""),
		)
		result.Confirmation = paymentdomain.ConfirmationSkipped
		s.obsMetrics.RecordConfirmation(ctx, string(result.Confirmation))
		return
	}

	sendCtx, cancel := context.WithTimeout(correlation.DetachedContext(ctx), sideEffectTimeout)
	defer cancel()

	if err := email.SendBookingConfirmation(sendCtx, s.email, email.NewBookingConfirmation(booking, to)); err != nil {
		result.Confirmation = paymentdomain.ConfirmationFailed
		result.ConfirmationErr = fmt.Errorf("%w: %v", paymentdomain.ErrSideEffectFailure, err)
		log.Error("failed to send booking confirmation", zap.Error(result.ConfirmationErr))
	} else {
		result.Confirmation = paymentdomain.ConfirmationSent
		log.Info("booking confirmation sent")
	}
	s.obsMetrics.RecordConfirmation(ctx, string(result.Confirmation))
}

func (s *Service) recipient(booking bookingdomain.Booking) string {
	if addr := strings.TrimSpace(booking.GuestEmail); addr != "" {
		return addr
	}
	contact := strings.TrimSpace(booking.GuestContact)
	if contact == "" || s.fallbackDomain == "" {
		return ""
	}
	return contact + "@" + s.fallbackDomain
}

func (s *Service) cachedDelivery(ctx context.Context, log *zap.Logger, deliveryID string) bool {
	if s.cache == nil {
		return false
	}
	seen, err := s.cache.Seen(ctx, deliveryID)
	if err != nil {
		log.Warn("delivery cache lookup failed", zap.Error(err))
		return false
	}
	if seen {
		log.Info("webhook delivery already processed (cache)")
		s.paymentMetrics.IncDedupHit()
	}
	return seen
}

func (s *Service) remember(ctx context.Context, log *zap.Logger, deliveryID string, outcome paymentdomain.Outcome) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remember(ctx, deliveryID, outcome); err != nil {
		log.Warn("delivery cache write failed", zap.Error(err))
	}
}

func (s *Service) finish(ctx context.Context, event string, result paymentdomain.Result, started time.Time) {
	s.obsMetrics.RecordReconcileOutcome(ctx, event, string(result.Outcome))
	s.paymentMetrics.ObserveReconcile(string(result.Outcome), time.Since(started))
}

var _ paymentdomain.Reconciler = (*Service)(nil)
