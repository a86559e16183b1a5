package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	ordersCreated     metric.Int64Counter
	reconcileOutcomes metric.Int64Counter
	gatewayErrors     metric.Int64Counter
	confirmations     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "bookneo"
	}
	meter := provider.Meter(name)

	ordersCreated, err := meter.Int64Counter("bookneo_payment_orders_created_total")
	if err != nil {
		return nil, err
	}
	reconcileOutcomes, err := meter.Int64Counter("bookneo_webhook_reconcile_total")
	if err != nil {
		return nil, err
	}
	gatewayErrors, err := meter.Int64Counter("bookneo_gateway_errors_total")
	if err != nil {
		return nil, err
	}
	confirmations, err := meter.Int64Counter("bookneo_booking_confirmations_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersCreated:     ordersCreated,
		reconcileOutcomes: reconcileOutcomes,
		gatewayErrors:     gatewayErrors,
		confirmations:     confirmations,
	}, nil
}

// RecordOrderCreated increments created gateway orders.
func (m *Metrics) RecordOrderCreated(ctx context.Context, currency string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("currency", strings.ToUpper(strings.TrimSpace(currency))))
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReconcileOutcome increments webhook reconcile results.
func (m *Metrics) RecordReconcileOutcome(ctx context.Context, event, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("event", strings.TrimSpace(event)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.reconcileOutcomes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordGatewayError increments failed gateway calls.
func (m *Metrics) RecordGatewayError(ctx context.Context, operation string, statusCode int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.Int("status_code", statusCode),
	)
	m.gatewayErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordConfirmation increments confirmation sends by result.
func (m *Metrics) RecordConfirmation(ctx context.Context, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("result", strings.TrimSpace(result)))
	m.confirmations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"currency":    {},
	"event":       {},
	"outcome":     {},
	"operation":   {},
	"status_code": {},
	"result":      {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
