package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/bookneo/internal/config"
	"github.com/smallbiznis/bookneo/internal/observability/metrics"
	"github.com/smallbiznis/bookneo/internal/payment/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// CredentialsSource yields the current key pair on every call so rotation needs no restart.
type CredentialsSource interface {
	Get() config.GatewayCredentials
}

type Params struct {
	fx.In

	Cfg            config.Config
	Creds          CredentialsSource
	Log            *zap.Logger
	HTTPClient     *http.Client            `optional:"true"`
	Metrics        *metrics.Metrics        `optional:"true"`
	PaymentMetrics *metrics.PaymentMetrics `optional:"true"`
}

type Client struct {
	baseURL    string
	creds      CredentialsSource
	httpClient *http.Client
	log        *zap.Logger
	metrics    *metrics.Metrics
	promMetric *metrics.PaymentMetrics
	tracer     trace.Tracer
}

func New(p Params) *Client {
	httpClient := p.HTTPClient
	if httpClient == nil {
		timeout := p.Cfg.Gateway.HTTPTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(p.Cfg.Gateway.BaseURL), "/"),
		creds:      p.Creds,
		httpClient: httpClient,
		log:        p.Log.Named("payment.gateway"),
		metrics:    p.Metrics,
		promMetric: p.PaymentMetrics,
		tracer:     otel.Tracer("bookneo/gateway"),
	}
}

type createOrderBody struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt,omitempty"`
	Notes          map[string]string `json:"notes,omitempty"`
	PaymentCapture int               `json:"payment_capture"`
}

type refundBody struct {
	Amount int64 `json:"amount"`
}

func (c *Client) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.PaymentOrder, error) {
	if req.Amount <= 0 {
		return domain.PaymentOrder{}, domain.ErrInvalidAmount
	}

	body := createOrderBody{
		Amount:         req.Amount,
		Currency:       strings.ToUpper(strings.TrimSpace(req.Currency)),
		Receipt:        req.Receipt,
		Notes:          req.Notes,
		PaymentCapture: 1,
	}

	var order domain.PaymentOrder
	if _, err := c.do(ctx, metrics.GatewayOpCreateOrder, http.MethodPost, "/orders", body, &order); err != nil {
		return domain.PaymentOrder{}, err
	}
	return order, nil
}

func (c *Client) FetchPayment(ctx context.Context, paymentID string) (domain.PaymentDetails, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return domain.PaymentDetails{}, domain.ErrInvalidPaymentID
	}

	var payment domain.PaymentDetails
	raw, err := c.do(ctx, metrics.GatewayOpFetchPayment, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &payment)
	if err != nil {
		return domain.PaymentDetails{}, err
	}
	payment.Raw = raw
	return payment, nil
}

func (c *Client) FetchOrder(ctx context.Context, orderID string) (domain.OrderDetails, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.OrderDetails{}, domain.ErrInvalidOrderID
	}

	var order domain.OrderDetails
	raw, err := c.do(ctx, metrics.GatewayOpFetchOrder, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &order)
	if err != nil {
		return domain.OrderDetails{}, err
	}
	order.Raw = raw
	return order, nil
}

func (c *Client) Refund(ctx context.Context, paymentID string, amountMajor int64) (domain.RefundResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return domain.RefundResult{}, domain.ErrInvalidPaymentID
	}
	if !domain.ValidAmountMajor(amountMajor) {
		return domain.RefundResult{}, domain.ErrInvalidAmount
	}

	var refund domain.RefundResult
	path := "/payments/" + url.PathEscape(paymentID) + "/refund"
	raw, err := c.do(ctx, metrics.GatewayOpRefund, http.MethodPost, path, refundBody{Amount: amountMajor * domain.MinorUnitsPerMajor}, &refund)
	if err != nil {
		return domain.RefundResult{}, err
	}
	refund.Raw = raw
	return refund, nil
}

type errorEnvelope struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

var fallbackDescriptions = map[string]string{
	metrics.GatewayOpCreateOrder:  "failed to create gateway order",
	metrics.GatewayOpFetchPayment: "payment verification failed",
	metrics.GatewayOpFetchOrder:   "failed to fetch order details",
	metrics.GatewayOpRefund:       "refund failed",
}

func (c *Client) do(ctx context.Context, op, method, path string, in any, out any) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("gateway.operation", op))

	start := time.Now()
	status, raw, err := c.roundTrip(ctx, method, path, in)
	c.promMetric.ObserveGatewayCall(op, status, time.Since(start))

	if err == nil && (status < 200 || status > 299) {
		err = &domain.GatewayRequestError{
			Op:          op,
			StatusCode:  status,
			Description: describe(op, raw),
		}
	}
	if err != nil {
		var gwErr *domain.GatewayRequestError
		if !errors.As(err, &gwErr) {
			gwErr = &domain.GatewayRequestError{Op: op, StatusCode: status, Description: fallbackDescriptions[op], Err: err}
			err = gwErr
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.SetStatus(codes.Error, gwErr.Op)
		c.metrics.RecordGatewayError(ctx, op, status)
		c.log.Warn("gateway request failed",
			zap.String("operation", op),
			zap.Int("status", status),
			zap.String("description", gwErr.Message()),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil, err
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, &domain.GatewayRequestError{
				Op:          op,
				StatusCode:  status,
				Description: "unreadable gateway response",
				Err:         err,
			}
		}
	}

	c.log.Debug("gateway request",
		zap.String("operation", op),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)),
	)
	return raw, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in any) (int, []byte, error) {
	creds := c.creds.Get()
	if creds.KeyID == "" || creds.SecretKey == "" {
		return 0, nil, domain.ErrMissingCredentials
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.SetBasicAuth(creds.KeyID, creds.SecretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func describe(op string, raw []byte) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if desc := strings.TrimSpace(envelope.Error.Description); desc != "" {
			return desc
		}
	}
	return fallbackDescriptions[op]
}

var _ domain.Gateway = (*Client)(nil)
