package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/smallbiznis/bookneo/internal/booking/domain"
	"github.com/smallbiznis/bookneo/internal/providers/email"
	"go.uber.org/zap"
)

type updateBookingPaymentRequest struct {
	PaymentStatus  *string `json:"paymentStatus"`
	TransactionID  *string `json:"transactionId"`
	GatewayOrderID *string `json:"gatewayOrderId"`
}

type sendConfirmationRequest struct {
	Email string `json:"email"`
}

func (s *Server) UpdateBookingPayment(c *gin.Context) {
	var req updateBookingPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	patch := bookingdomain.PaymentPatch{
		TransactionID:  trimmedPtr(req.TransactionID),
		GatewayOrderID: trimmedPtr(req.GatewayOrderID),
	}
	if req.PaymentStatus != nil {
		status := bookingdomain.PaymentStatus(strings.ToLower(strings.TrimSpace(*req.PaymentStatus)))
		patch.PaymentStatus = &status
	}

	booking, err := s.bookings.UpdatePayment(c.Request.Context(), strings.TrimSpace(c.Param("id")), patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (s *Server) SendBookingConfirmation(c *gin.Context) {
	var req sendConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	to := strings.TrimSpace(req.Email)
	if to == "" {
		AbortWithError(c, newValidationError("email", "required", "email is required"))
		return
	}

	booking, err := s.bookings.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if strings.TrimSpace(booking.HotelName) == "" {
		AbortWithError(c, ErrNotFound)
		return
	}

	err = email.SendBookingConfirmation(c.Request.Context(), s.email, email.NewBookingConfirmation(booking, to))
	if err != nil {
		if errors.Is(err, email.ErrNoRecipient) {
			AbortWithError(c, newValidationError("email", "required", "email is required"))
			return
		}
		s.log.Error("send confirmation failed",
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
		abortWithMessage(c, http.StatusInternalServerError, err, "Failed to send confirmation email")
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Confirmation email sent successfully"})
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
