package context

import (
	"context"
	"strings"
)

type requestIDKey struct{}

type deliveryIDKey struct{}

// WithRequestID stores the inbound request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

// WithDeliveryID stores the gateway delivery id of the webhook being processed.
func WithDeliveryID(ctx context.Context, deliveryID string) context.Context {
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return ctx
	}
	return context.WithValue(ctx, deliveryIDKey{}, deliveryID)
}

// DeliveryIDFromContext returns the webhook delivery id or an empty string.
func DeliveryIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(deliveryIDKey{}).(string)
	return value
}
