package dedup

import (
	"context"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bookneo/internal/config"
	"github.com/smallbiznis/bookneo/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "bookneo:webhook:delivery:"
	defaultTTL = 72 * time.Hour
)

// Cache records processed delivery ids in redis.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func New(client redis.UniversalClient, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Provide returns nil when REDIS_ADDR is not configured.
func Provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) domain.DeliveryCache {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
	log = log.Named("payment.dedup")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable; webhook dedup falls back to the notification log", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return New(client, cfg.Redis.DedupTTL)
}

func Key(deliveryID string) string {
	return keyPrefix + deliveryID
}

func (c *Cache) Seen(ctx context.Context, deliveryID string) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	if deliveryID == "" {
		return false, errors.New("delivery id is empty")
	}
	n, err := c.client.Exists(ctx, Key(deliveryID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Cache) Remember(ctx context.Context, deliveryID string, outcome domain.Outcome) error {
	if c == nil || c.client == nil {
		return nil
	}
	if deliveryID == "" {
		return errors.New("delivery id is empty")
	}
	return c.client.SetNX(ctx, Key(deliveryID), string(outcome), c.ttl).Err()
}
