package observability

import (
	"testing"

	"github.com/smallbiznis/bookneo/internal/config"
	"github.com/stretchr/testify/require"
)

func clearObservabilityEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DEPLOYMENT_ENV", "SERVICE_VERSION", "LOG_LEVEL", "LOG_FORMAT", "LOG_DEBUG",
		"LOG_SAMPLING_INITIAL", "LOG_SAMPLING_THEREAFTER", "OTEL_ENABLED",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_PROTOCOL",
		"OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "OTEL_SAMPLING_RATIO",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearObservabilityEnv(t)

	cfg := LoadConfig(config.Config{Environment: "staging"})

	require.Equal(t, "bookneo", cfg.ServiceName)
	require.Equal(t, "staging", cfg.Environment)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 100, cfg.LogSamplingInitial)
	require.Equal(t, 100, cfg.LogSamplingThereafter)
	require.False(t, cfg.OtelEnabled)
	require.Equal(t, "grpc", cfg.OtelExporterProtocol)
	require.InDelta(t, 0.1, cfg.OtelSamplingRatio, 1e-9)
	require.False(t, cfg.Debug())
}

func TestLoadConfigEnablesExportersInProduction(t *testing.T) {
	clearObservabilityEnv(t)

	cfg := LoadConfig(config.Config{AppName: "bookneo-payments", Environment: "production"})
	require.True(t, cfg.OtelEnabled)
	require.Equal(t, "bookneo-payments", cfg.ServiceName)

	t.Setenv("OTEL_ENABLED", "false")
	require.False(t, LoadConfig(config.Config{Environment: "production"}).OtelEnabled)
}

func TestLoadConfigReadsLogSampling(t *testing.T) {
	clearObservabilityEnv(t)
	t.Setenv("LOG_SAMPLING_INITIAL", "10")
	t.Setenv("LOG_SAMPLING_THEREAFTER", "500")

	cfg := LoadConfig(config.Config{Environment: "production"})
	require.Equal(t, 10, cfg.LogSamplingInitial)
	require.Equal(t, 500, cfg.LogSamplingThereafter)

	logCfg := provideLoggerConfig(cfg)
	require.Equal(t, 10, logCfg.SamplingInitial)
	require.Equal(t, 500, logCfg.SamplingThereafter)
	require.False(t, logCfg.Debug)

	t.Setenv("LOG_SAMPLING_INITIAL", "-3")
	t.Setenv("LOG_SAMPLING_THEREAFTER", "lots")
	cfg = LoadConfig(config.Config{Environment: "production"})
	require.Equal(t, 100, cfg.LogSamplingInitial)
	require.Equal(t, 100, cfg.LogSamplingThereafter)
}

func TestConfigDebug(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "production info", cfg: Config{Environment: "production", LogLevel: "info"}},
		{name: "debug level", cfg: Config{Environment: "production", LogLevel: "DEBUG"}, want: true},
		{name: "local environment", cfg: Config{Environment: "local", LogLevel: "info"}, want: true},
		{name: "forced", cfg: Config{Environment: "production", LogDebug: true}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.cfg.Debug())
			require.Equal(t, tt.want, provideLoggerConfig(tt.cfg).Debug)
		})
	}
}
