package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
)

var client *redis.Client

// SetupCache connects to the Redis (or Dragonfly) server configured in cfg.
// A failed ping is returned; the caller decides whether to fall back.
func SetupCache(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connect cache %s: %w", c.Options().Addr, err)
	}

	log.Infof("[Cache] Connected to %s", c.Options().Addr)
	client = c
	return c, nil
}

// GetClient returns the client created by SetupCache, or nil.
func GetClient() *redis.Client {
	return client
}

// Port parses the configured port for storage drivers that want an int.
func Port(cfg config.CacheConfig) int {
	p, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return 6379
	}
	return p
}

// Close releases the shared client.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
