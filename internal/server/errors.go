package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/smallbiznis/bookneo/internal/booking/domain"
	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// messageResponse is the flat body the checkout client expects from gateway routes.
type messageResponse struct {
	Message string `json:"message"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// abortWithMessage records err for logging and answers with a flat {message} body.
func abortWithMessage(c *gin.Context, status int, err error, message string) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, messageResponse{Message: message})
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if field, ok := validationField(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   field,
					Code:    err.Error(),
					Message: validationErrorMessage(err),
				},
			},
		}
	}

	if gwErr, ok := paymentdomain.AsGatewayError(err); ok {
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_error",
			Message: gwErr.Message(),
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationField(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "request", true
	case errors.Is(err, bookingdomain.ErrInvalidID):
		return "id", true
	case errors.Is(err, bookingdomain.ErrInvalidStatus):
		return "paymentStatus", true
	case errors.Is(err, bookingdomain.ErrInvalidPaymentID),
		errors.Is(err, paymentdomain.ErrInvalidPaymentID):
		return "paymentId", true
	case errors.Is(err, bookingdomain.ErrEmptyPatch):
		return "request", true
	case errors.Is(err, paymentdomain.ErrInvalidAmount):
		return "amount", true
	case errors.Is(err, paymentdomain.ErrInvalidOrderID):
		return "orderId", true
	case errors.Is(err, paymentdomain.ErrInvalidPageToken):
		return "page_token", true
	default:
		return "", false
	}
}

func validationErrorMessage(err error) string {
	switch {
	case errors.Is(err, bookingdomain.ErrInvalidStatus):
		return "paymentStatus must be one of pending, completed, failed, refunded"
	case errors.Is(err, bookingdomain.ErrEmptyPatch):
		return "at least one payment field is required"
	case errors.Is(err, paymentdomain.ErrInvalidAmount):
		return "amount must be a positive whole number"
	case errors.Is(err, paymentdomain.ErrInvalidPageToken):
		return "page_token is invalid"
	default:
		return "invalid value"
	}
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, bookingdomain.ErrNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

// classifyErrorForLog feeds the request logger's error_type and error_code fields.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if gwErr, ok := paymentdomain.AsGatewayError(err); ok {
		code = gwErr.Op
	}
	return payload.Type, code
}
