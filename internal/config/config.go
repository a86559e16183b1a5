package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBAutoMigrate     bool

	Redis   RedisConfig
	Email   EmailConfig
	Slack   SlackConfig
	Gateway GatewayConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	DedupTTL time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	// FallbackDomain builds a guest address from the contact number when no email is stored.
	FallbackDomain string
}

type SlackConfig struct {
	WebhookURL string
	Channel    string
}

// GatewayConfig configures the payment gateway client and webhook verification.
type GatewayConfig struct {
	BaseURL         string
	KeyID           string
	SecretKey       string
	WebhookSecret   string
	DefaultCurrency string
	HTTPTimeout     time.Duration
	// CredentialsFile is an optional gateway.yml watched for credential rotation.
	CredentialsFile string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "bookneo"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "bookneo"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "bookneo.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBAutoMigrate:     getenvBool("DATABASE_AUTO_MIGRATE", true),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
			DedupTTL: getenvDuration("WEBHOOK_DEDUP_TTL", 72*time.Hour),
		},
		Email: EmailConfig{
			SMTPHost:       strings.TrimSpace(getenv("SMTP_HOST", "")),
			SMTPPort:       getenvInt("SMTP_PORT", 587),
			SMTPUsername:   getenv("SMTP_USERNAME", ""),
			SMTPPassword:   getenv("SMTP_PASSWORD", ""),
			SMTPFrom:       getenv("SMTP_FROM", "bookings@bookneoapp.com"),
			FallbackDomain: getenv("EMAIL_FALLBACK_DOMAIN", "bookneoapp.com"),
		},
		Slack: SlackConfig{
			WebhookURL: strings.TrimSpace(getenv("SLACK_WEBHOOK_URL", "")),
			Channel:    getenv("SLACK_ALERT_CHANNEL", "#payments-alerts"),
		},
		Gateway: GatewayConfig{
			BaseURL:         strings.TrimRight(getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"), "/"),
			KeyID:           strings.TrimSpace(getenv("RAZORPAY_KEY_ID", "")),
			SecretKey:       strings.TrimSpace(getenv("RAZORPAY_SECRET_KEY", "")),
			WebhookSecret:   strings.TrimSpace(getenv("RAZORPAY_WEBHOOK_SECRET", "")),
			DefaultCurrency: strings.ToUpper(getenv("GATEWAY_DEFAULT_CURRENCY", "INR")),
			HTTPTimeout:     getenvDuration("GATEWAY_HTTP_TIMEOUT", 15*time.Second),
			CredentialsFile: strings.TrimSpace(getenv("GATEWAY_CREDENTIALS_FILE", "")),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
