package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"slotmarket/internal/domain"

	"github.com/rs/zerolog"
)

const defaultRecoveryWindow = time.Minute

// FailoverCache serves from primary until it errors, then from fallback,
// retrying primary once the recovery window has passed.
type FailoverCache struct {
	primary  domain.Cache
	fallback domain.Cache
	logger   *zerolog.Logger
	window   time.Duration

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverCache(primary, fallback domain.Cache, logger *zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		window:   defaultRecoveryWindow,
	}
}

func (c *FailoverCache) markDown(err error) {
	if !c.isDown.Swap(true) {
		c.logger.Error().Err(err).Msg("Primary cache failed, falling back to memory")
	}
	c.mu.Lock()
	c.lastCheck = time.Now()
	c.mu.Unlock()
}

// usePrimary reports whether the next call should try primary.
func (c *FailoverCache) usePrimary() bool {
	if !c.isDown.Load() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastCheck) > c.window {
		c.lastCheck = time.Now()
		return true
	}
	return false
}

func (c *FailoverCache) recovered() {
	if c.isDown.Swap(false) {
		c.logger.Info().Msg("Primary cache recovered")
	}
}

func (c *FailoverCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.usePrimary() {
		val, ok, err := c.primary.Get(ctx, key)
		if err == nil {
			c.recovered()
			return val, ok, nil
		}
		c.markDown(err)
	}
	return c.fallback.Get(ctx, key)
}

func (c *FailoverCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.usePrimary() {
		err := c.primary.Set(ctx, key, value, ttl)
		if err == nil {
			c.recovered()
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, key, value, ttl)
}

func (c *FailoverCache) Delete(ctx context.Context, key string) error {
	// fallback may hold entries written while primary was down
	_ = c.fallback.Delete(ctx, key)
	if c.usePrimary() {
		err := c.primary.Delete(ctx, key)
		if err == nil {
			c.recovered()
			return nil
		}
		c.markDown(err)
	}
	return nil
}
