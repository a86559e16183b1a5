package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
)

func (s *Server) ListPaymentNotifications(c *gin.Context) {
	pageSize, err := parseOptionalInt32(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "page_size must be a positive number"))
		return
	}

	resp, err := s.notifications.List(c.Request.Context(), paymentdomain.ListNotificationsRequest{
		BookingID: strings.TrimSpace(c.Query("booking_id")),
		PaymentID: strings.TrimSpace(c.Query("payment_id")),
		Outcome:   strings.TrimSpace(c.Query("outcome")),
		PageToken: strings.TrimSpace(c.Query("page_token")),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
