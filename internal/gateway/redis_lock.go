// Redis-backed coordination for background refresh work. This file provides
// the client constructor and a lease-style distributed lock so only one
// instance scrapes region ballot links at a time.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/votehq/turnout-backend/internal/services"
)

// ConnectRedis initializes a Redis client from URL or host:port input.
// Supporting both formats keeps local/dev and container config paths simple.
func ConnectRedis(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisRefreshLock serializes the region-link refresh across instances with
// a SET NX lease. The scrape is a bulk replace expected to run
// single-instance; the lease keeps overlapping cron triggers from racing.
type RedisRefreshLock struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

// NewRedisRefreshLock constructs a refresh lock with a lease slightly longer
// than a worst-case scrape.
func NewRedisRefreshLock(client *redis.Client) *RedisRefreshLock {
	return &RedisRefreshLock{
		Client: client,
		Key:    "turnout:region_links:refresh",
		TTL:    5 * time.Minute,
	}
}

// TryLock implements services.RefreshLock. The release function deletes the
// lease only when this holder still owns it.
func (l *RedisRefreshLock) TryLock(ctx context.Context) (func(), error) {
	holder := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, l.Key, holder, l.TTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, services.ErrRefreshLocked
	}
	release := func() {
		// Best effort: only delete our own lease.
		current, err := l.Client.Get(context.Background(), l.Key).Result()
		if err == nil && current == holder {
			if err := l.Client.Del(context.Background(), l.Key).Err(); err != nil {
				log.Warn().Err(err).Msg("failed to release region refresh lock")
			}
		}
	}
	return release, nil
}
