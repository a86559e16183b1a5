package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("invalid_signature")
	ErrUnresolvable       = errors.New("unresolvable_notification")
	ErrConflictingPayment = errors.New("conflicting_payment")
	ErrSideEffectFailure  = errors.New("confirmation_failed")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidPaymentID   = errors.New("invalid_payment_id")
	ErrInvalidOrderID     = errors.New("invalid_order_id")
	ErrInvalidPayload     = errors.New("invalid_payload")
	ErrMissingCredentials = errors.New("gateway_credentials_missing")
	ErrInvalidPageToken   = errors.New("invalid_page_token")
)

// GatewayRequestError reports a rejected or failed call to the payment gateway.
// StatusCode is zero when the request never got a response.
type GatewayRequestError struct {
	Op          string
	StatusCode  int
	Description string
	Err         error
}

func (e *GatewayRequestError) Error() string {
	var b strings.Builder
	b.WriteString("gateway ")
	b.WriteString(e.Op)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	b.WriteString(": ")
	b.WriteString(e.Message())
	return b.String()
}

func (e *GatewayRequestError) Unwrap() error { return e.Err }

// Message is the gateway's own description, suitable for returning to API callers.
func (e *GatewayRequestError) Message() string {
	if msg := strings.TrimSpace(e.Description); msg != "" {
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "gateway request failed"
}

// AsGatewayError unwraps err to a *GatewayRequestError if one is in its chain.
func AsGatewayError(err error) (*GatewayRequestError, bool) {
	var gwErr *GatewayRequestError
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}
