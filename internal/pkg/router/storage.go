package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/cache"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
)

// limiterDatabase keeps rate limit counters apart from the dedup keys in DB 0.
const limiterDatabase = 1

// NewLimiterStorage shares the webhook rate limit across instances through
// the configured cache. It returns nil when no cache is configured.
func NewLimiterStorage(cfg config.CacheConfig) fiber.Storage {
	if !cfg.Enabled() {
		return nil
	}
	return redis.New(redis.Config{
		Host:     cfg.Host,
		Port:     cache.Port(cfg),
		Password: cfg.Password,
		Database: limiterDatabase,
		Reset:    false,
	})
}
