package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
	"go.uber.org/zap"
)

type createOrderNotes struct {
	BookingID     string `json:"bookingId"`
	CustomerPhone string `json:"customerPhone"`
}

type createOrderRequest struct {
	Amount   int64            `json:"amount"`
	Currency string           `json:"currency"`
	Receipt  string           `json:"receipt"`
	Notes    createOrderNotes `json:"notes"`
}

type refundRequest struct {
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
}

func (s *Server) CreatePaymentOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, invalidRequestError(), "Invalid request body")
		return
	}

	resp, err := s.orders.CreatePaymentOrder(c.Request.Context(), paymentdomain.CreatePaymentOrderRequest{
		BookingID:   strings.TrimSpace(req.Notes.BookingID),
		AmountMajor: req.Amount,
		Currency:    req.Currency,
		Receipt:     strings.TrimSpace(req.Receipt),
		Customer: paymentdomain.Customer{
			Phone: strings.TrimSpace(req.Notes.CustomerPhone),
		},
	})
	if err != nil {
		s.respondGatewayError(c, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPaymentOrder returns the gateway's document untouched. Order ids carry the
// "order_" prefix; anything else is looked up as a payment.
func (s *Server) GetPaymentOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("orderId"))
	ctx := c.Request.Context()

	if strings.HasPrefix(id, "order_") {
		order, err := s.orders.FetchOrder(ctx, id)
		if err != nil {
			s.respondGatewayError(c, err, "Failed to fetch order details")
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", order.Raw)
		return
	}

	payment, err := s.orders.FetchPayment(ctx, id)
	if err != nil {
		s.respondGatewayError(c, err, "Failed to fetch order details")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payment.Raw)
}

func (s *Server) RefundPayment(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, invalidRequestError(), "Invalid request body")
		return
	}

	refund, err := s.orders.RefundPayment(c.Request.Context(), paymentdomain.RefundPaymentRequest{
		PaymentID:   strings.TrimSpace(req.PaymentID),
		AmountMajor: req.Amount,
	})
	if err != nil {
		s.respondGatewayError(c, err, "Refund failed")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", refund.Raw)
}

// respondGatewayError answers gateway routes with a flat {message}. Input
// validation is a 400; everything else, gateway rejections included, is a 500
// carrying the gateway's own description when there is one.
func (s *Server) respondGatewayError(c *gin.Context, err error, fallback string) {
	if _, ok := validationField(err); ok {
		abortWithMessage(c, http.StatusBadRequest, err, validationErrorMessage(err))
		return
	}

	message := fallback
	if gwErr, ok := paymentdomain.AsGatewayError(err); ok {
		message = gwErr.Message()
	}
	s.log.Error("gateway route failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	abortWithMessage(c, http.StatusInternalServerError, err, message)
}
