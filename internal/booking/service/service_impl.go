package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/bookneo/internal/booking/domain"
	"github.com/smallbiznis/bookneo/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("booking.service"),
		clock: c,
		repo:  p.Repo,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Booking{}, domain.ErrInvalidID
	}
	return s.load(ctx, s.db, id)
}

func (s *Service) UpdatePayment(ctx context.Context, id string, patch domain.PaymentPatch) (domain.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Booking{}, domain.ErrInvalidID
	}
	if patch.Empty() {
		return domain.Booking{}, domain.ErrEmptyPatch
	}
	if patch.PaymentStatus != nil && !patch.PaymentStatus.Valid() {
		return domain.Booking{}, domain.ErrInvalidStatus
	}

	var booking domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.UpdatePayment(ctx, tx, id, patch, s.clock.Now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
		booking, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.log.Info("booking payment patched",
		zap.String("booking_id", id),
		zap.String("payment_status", string(booking.PaymentStatus)),
	)
	return booking, nil
}

// ApplyPayment records a gateway-reported status. The write is a single conditional UPDATE
// so concurrent deliveries cannot both move a booking into completed; the follow-up read only
// classifies why nothing was written.
func (s *Service) ApplyPayment(ctx context.Context, req domain.ApplyPaymentRequest) (domain.ApplyPaymentResult, error) {
	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		return domain.ApplyPaymentResult{}, domain.ErrInvalidID
	}
	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" {
		return domain.ApplyPaymentResult{}, domain.ErrInvalidPaymentID
	}
	if req.Status != domain.PaymentStatusCompleted && req.Status != domain.PaymentStatusFailed {
		return domain.ApplyPaymentResult{}, domain.ErrInvalidStatus
	}

	rows, err := s.repo.ApplyPayment(ctx, s.db, bookingID, req.Status, paymentID, s.clock.Now())
	if err != nil {
		return domain.ApplyPaymentResult{}, err
	}

	booking, err := s.load(ctx, s.db, bookingID)
	if err != nil {
		return domain.ApplyPaymentResult{}, err
	}
	if rows > 0 {
		return domain.ApplyPaymentResult{Outcome: domain.ApplyOutcomeApplied, Booking: booking}, nil
	}

	outcome := domain.ApplyOutcomeConflict
	if req.Status == domain.PaymentStatusCompleted && booking.TransactionID != nil && *booking.TransactionID == paymentID {
		outcome = domain.ApplyOutcomeReplayed
	}
	return domain.ApplyPaymentResult{Outcome: outcome, Booking: booking}, nil
}

func (s *Service) MarkRefunded(ctx context.Context, paymentID string) (domain.Booking, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return domain.Booking{}, domain.ErrInvalidPaymentID
	}

	var booking domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := s.repo.MarkRefunded(ctx, tx, paymentID, s.clock.Now())
		if err != nil {
			return err
		}
		if id == "" {
			return domain.ErrNotFound
		}
		booking, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return booking, nil
}

func (s *Service) AttachOrder(ctx context.Context, id, orderID string) error {
	id = strings.TrimSpace(id)
	orderID = strings.TrimSpace(orderID)
	if id == "" || orderID == "" {
		return domain.ErrInvalidID
	}
	rows, err := s.repo.AttachOrder(ctx, s.db, id, orderID, s.clock.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) load(ctx context.Context, db *gorm.DB, id string) (domain.Booking, error) {
	item, err := s.repo.FindByID(ctx, db, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if item == nil {
		return domain.Booking{}, domain.ErrNotFound
	}
	return *item, nil
}

// IsNotFound matches both the domain sentinel and a raw gorm miss.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
