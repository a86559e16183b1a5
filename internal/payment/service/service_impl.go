package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/bookneo/internal/config"
	bookingdomain "github.com/smallbiznis/bookneo/internal/booking/domain"
	obsmetrics "github.com/smallbiznis/bookneo/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Gateway    paymentdomain.Gateway
	Bookings   bookingdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log             *zap.Logger
	gateway         paymentdomain.Gateway
	bookings        bookingdomain.Service
	obsMetrics      *obsmetrics.Metrics
	defaultCurrency string
}

func NewService(p Params) *Service {
	currency := strings.ToUpper(strings.TrimSpace(p.Cfg.Gateway.DefaultCurrency))
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		log:             p.Log.Named("payment.service"),
		gateway:         p.Gateway,
		bookings:        p.Bookings,
		obsMetrics:      p.ObsMetrics,
		defaultCurrency: currency,
	}
}

// CreatePaymentOrder opens a gateway order for a booking. Gateway errors are returned as-is.
func (s *Service) CreatePaymentOrder(ctx context.Context, req paymentdomain.CreatePaymentOrderRequest) (paymentdomain.CreatePaymentOrderResult, error) {
	if !paymentdomain.ValidAmountMajor(req.AmountMajor) {
		return paymentdomain.CreatePaymentOrderResult{}, paymentdomain.ErrInvalidAmount
	}

	bookingID := strings.TrimSpace(req.BookingID)
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	receipt := strings.TrimSpace(req.Receipt)
	if receipt == "" && bookingID != "" {
		receipt = "booking_" + bookingID
	}

	notes := map[string]string{}
	if bookingID != "" {
		notes["bookingId"] = bookingID
	}
	if phone := strings.TrimSpace(req.Customer.Phone); phone != "" {
		notes["customerPhone"] = phone
	}
	if len(notes) == 0 {
		notes = nil
	}

	order, err := s.gateway.CreateOrder(ctx, paymentdomain.CreateOrderRequest{
		Amount:   req.AmountMajor * paymentdomain.MinorUnitsPerMajor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return paymentdomain.CreatePaymentOrderResult{}, err
	}

	s.obsMetrics.RecordOrderCreated(ctx, currency)
	s.log.Info("payment order created",
		zap.String("order_id", order.ID),
		zap.String("booking_id", bookingID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", currency),
	)

	if bookingID != "" && s.bookings != nil {
		if err := s.bookings.AttachOrder(ctx, bookingID, order.ID); err != nil {
			s.log.Warn("failed to attach order to booking",
				zap.String("order_id", order.ID),
				zap.String("booking_id", bookingID),
				zap.Error(err),
			)
		}
	}

	return paymentdomain.CreatePaymentOrderResult{OrderID: order.ID, Amount: order.Amount}, nil
}

func (s *Service) FetchPayment(ctx context.Context, paymentID string) (paymentdomain.PaymentDetails, error) {
	return s.gateway.FetchPayment(ctx, paymentID)
}

func (s *Service) FetchOrder(ctx context.Context, orderID string) (paymentdomain.OrderDetails, error) {
	return s.gateway.FetchOrder(ctx, orderID)
}

// RefundPayment refunds through the gateway and, once the gateway reports the payment fully
// refunded, marks the paying booking refunded. The booking update is best effort.
func (s *Service) RefundPayment(ctx context.Context, req paymentdomain.RefundPaymentRequest) (paymentdomain.RefundResult, error) {
	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" {
		return paymentdomain.RefundResult{}, paymentdomain.ErrInvalidPaymentID
	}
	if !paymentdomain.ValidAmountMajor(req.AmountMajor) {
		return paymentdomain.RefundResult{}, paymentdomain.ErrInvalidAmount
	}

	refund, err := s.gateway.Refund(ctx, paymentID, req.AmountMajor)
	if err != nil {
		return paymentdomain.RefundResult{}, err
	}
	s.log.Info("payment refunded",
		zap.String("payment_id", paymentID),
		zap.String("refund_id", refund.ID),
		zap.Int64("amount", refund.Amount),
	)

	s.syncRefundedBooking(ctx, paymentID)
	return refund, nil
}

func (s *Service) syncRefundedBooking(ctx context.Context, paymentID string) {
	if s.bookings == nil {
		return
	}

	payment, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		s.log.Warn("refund status check failed", zap.String("payment_id", paymentID), zap.Error(err))
		return
	}
	if !payment.FullyRefunded() {
		return
	}

	booking, err := s.bookings.MarkRefunded(ctx, paymentID)
	switch {
	case errors.Is(err, bookingdomain.ErrNotFound):
		s.log.Info("refunded payment has no completed booking", zap.String("payment_id", paymentID))
	case err != nil:
		s.log.Warn("failed to mark booking refunded", zap.String("payment_id", paymentID), zap.Error(err))
	default:
		s.log.Info("booking marked refunded", zap.String("booking_id", booking.ID), zap.String("payment_id", paymentID))
	}
}

var _ paymentdomain.OrderService = (*Service)(nil)
