package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/bookneo/internal/config"
)

// Config holds observability configuration derived from environment variables.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel              string
	LogFormat             string
	// LogDebug forces debug logging regardless of level or environment.
	LogDebug              bool
	LogSamplingInitial    int
	LogSamplingThereafter int

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig resolves observability settings from the environment, falling back to the app config.
func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "bookneo"
	}
	environment := getenv("DEPLOYMENT_ENV", cfg.Environment)
	version := getenv("SERVICE_VERSION", cfg.AppVersion)
	logLevel := strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info")))
	logFormat := strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json")))
	otlpEndpoint := getenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	otlpProtocol := strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")))
	if tracesProtocol := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); tracesProtocol != "" {
		otlpProtocol = strings.ToLower(tracesProtocol)
	}

	// Duplicate deliveries log the same lines; sampling keeps a retry storm readable.
	samplingInitial := getenvInt("LOG_SAMPLING_INITIAL", 100)
	samplingThereafter := getenvInt("LOG_SAMPLING_THEREAFTER", 100)

	samplingRatio := getenvFloat("OTEL_SAMPLING_RATIO", 0.1)
	// Exporters stay off outside production unless asked for.
	enabled := getenvBool("OTEL_ENABLED", cfg.IsProduction())

	return Config{
		ServiceName:           serviceName,
		Environment:           strings.TrimSpace(environment),
		Version:               strings.TrimSpace(version),
		LogLevel:              logLevel,
		LogFormat:             logFormat,
		LogDebug:              getenvBool("LOG_DEBUG", false),
		LogSamplingInitial:    samplingInitial,
		LogSamplingThereafter: samplingThereafter,
		OtelEnabled:           enabled,
		OtelExporterEndpoint:  strings.TrimSpace(otlpEndpoint),
		OtelExporterProtocol:  otlpProtocol,
		OtelSamplingRatio:     samplingRatio,
	}
}

// Debug reports whether logs should be verbose and unsampled.
func (c Config) Debug() bool {
	if c.LogDebug {
		return true
	}
	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if level == "debug" {
		return true
	}
	return isDevEnv(c.Environment)
}

func isDevEnv(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	switch env {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
