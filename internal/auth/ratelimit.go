package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

// RateLimiter tracks login attempts per identifier in redis.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redis *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redis}
}

func (r *RateLimiter) CheckLogin(ctx context.Context, identifier string) error {
	key := fmt.Sprintf("login_attempts:%s", identifier)

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	if count == 1 {
		r.redis.Expire(ctx, key, loginAttemptWindow)
	}

	if count > loginAttemptLimit {
		return ErrTooManyAttempts
	}

	return nil
}
