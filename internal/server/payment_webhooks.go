package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obsmiddleware "github.com/smallbiznis/bookneo/internal/observability/logger"
	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
	"go.uber.org/zap"
)

const (
	signatureHeader     = "X-Razorpay-Signature"
	maxWebhookBodyBytes = 1 << 20
)

func (s *Server) HandleRazorpayWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, invalidRequestError(), "Invalid request body")
		return
	}

	result, err := s.reconciler.Reconcile(c.Request.Context(), paymentdomain.Delivery{
		Body:       payload,
		Signature:  strings.TrimSpace(c.GetHeader(signatureHeader)),
		DeliveryID: strings.TrimSpace(c.GetHeader(obsmiddleware.DeliveryHeader)),
	})
	if err != nil {
		if errors.Is(err, paymentdomain.ErrUnauthenticated) {
			c.Set("reconcile_outcome", "unauthenticated")
			abortWithMessage(c, http.StatusUnauthorized, err, "Invalid signature")
			return
		}
		s.log.Error("webhook processing failed", zap.Error(err))
		abortWithMessage(c, http.StatusInternalServerError, err, "Webhook processing failed")
		return
	}

	c.Set("reconcile_outcome", string(result.Outcome))
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"outcome": result.Outcome,
	})
}
