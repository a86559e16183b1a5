package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// GatewayCredentials is the rotatable part of the gateway configuration.
type GatewayCredentials struct {
	KeyID         string `mapstructure:"keyId"`
	SecretKey     string `mapstructure:"secretKey"`
	WebhookSecret string `mapstructure:"webhookSecret"`
}

// GatewayCredentialsHolder serves the current gateway credentials. When a
// gateway.yml is present it is watched and swapped in on change.
type GatewayCredentialsHolder struct {
	current atomic.Value // holds GatewayCredentials
}

// NewStaticGatewayCredentials returns a holder that never reloads.
func NewStaticGatewayCredentials(creds GatewayCredentials) *GatewayCredentialsHolder {
	holder := &GatewayCredentialsHolder{}
	holder.current.Store(creds)
	return holder
}

func NewGatewayCredentialsHolder(cfg Config, log *zap.Logger) (*GatewayCredentialsHolder, error) {
	defaults := GatewayCredentials{
		KeyID:         cfg.Gateway.KeyID,
		SecretKey:     cfg.Gateway.SecretKey,
		WebhookSecret: cfg.Gateway.WebhookSecret,
	}

	v := viper.New()
	if cfg.Gateway.CredentialsFile != "" {
		v.SetConfigFile(cfg.Gateway.CredentialsFile)
	} else {
		v.SetConfigName("gateway")
		v.SetConfigType("yml")
		v.AddConfigPath("/var/lib/bookneo/config") // Volume-mounted secrets
		v.AddConfigPath("/etc/bookneo")
		v.AddConfigPath(".")
	}
	v.SetDefault("gateway.keyId", defaults.KeyID)
	v.SetDefault("gateway.secretKey", defaults.SecretKey)
	v.SetDefault("gateway.webhookSecret", defaults.WebhookSecret)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var creds GatewayCredentials
	if err := v.UnmarshalKey("gateway", &creds); err != nil {
		return nil, err
	}
	creds = normalizeCredentials(creds)
	if err := validateGatewayCredentials(creds); err != nil {
		log.Warn("gateway credentials incomplete", zap.Error(err))
	}

	holder := NewStaticGatewayCredentials(creds)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated GatewayCredentials
		if err := v.UnmarshalKey("gateway", &updated); err != nil {
			log.Error("gateway credentials reload failed", zap.Error(err))
			return
		}
		updated = normalizeCredentials(updated)
		if err := validateGatewayCredentials(updated); err != nil {
			log.Error("invalid gateway credentials ignored", zap.Error(err))
			return
		}
		holder.Update(updated)
		log.Info("gateway credentials reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *GatewayCredentialsHolder) Get() GatewayCredentials {
	if h == nil {
		return GatewayCredentials{}
	}
	creds, _ := h.current.Load().(GatewayCredentials)
	return creds
}

// Update swaps in a new credential set for subsequent Get calls.
func (h *GatewayCredentialsHolder) Update(creds GatewayCredentials) {
	h.current.Store(normalizeCredentials(creds))
}

func normalizeCredentials(creds GatewayCredentials) GatewayCredentials {
	return GatewayCredentials{
		KeyID:         strings.TrimSpace(creds.KeyID),
		SecretKey:     strings.TrimSpace(creds.SecretKey),
		WebhookSecret: strings.TrimSpace(creds.WebhookSecret),
	}
}

func validateGatewayCredentials(creds GatewayCredentials) error {
	if creds.KeyID == "" || creds.SecretKey == "" {
		return errors.New("gateway.keyId and gateway.secretKey are required")
	}
	if creds.WebhookSecret == "" {
		return errors.New("gateway.webhookSecret is required")
	}
	return nil
}
