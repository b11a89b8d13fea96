package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTooManyAttempts = errors.New("ratelimit: too many attempts")

// Limiter counts attempts per subject in redis with a sliding expiry
// window. The first increment of a window arms the TTL.
type Limiter struct {
	redis *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{redis: client}
}

func (l *Limiter) check(ctx context.Context, key string, limit int64, window time.Duration) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		l.redis.Expire(ctx, key, window)
	}
	if count > limit {
		return ErrTooManyAttempts
	}
	return nil
}

// CheckLogin allows 5 attempts per email per 15 minutes.
func (l *Limiter) CheckLogin(ctx context.Context, email string) error {
	return l.check(ctx, fmt.Sprintf("login_attempts:%s", email), 5, 15*time.Minute)
}

// CheckRegister allows 3 registrations per email per hour.
func (l *Limiter) CheckRegister(ctx context.Context, email string) error {
	return l.check(ctx, fmt.Sprintf("register_attempts:%s", email), 3, time.Hour)
}

// CheckUpload allows 30 file uploads per user per hour.
func (l *Limiter) CheckUpload(ctx context.Context, userID string) error {
	return l.check(ctx, fmt.Sprintf("upload_attempts:%s", userID), 30, time.Hour)
}

// ResetLogin clears the login window, called after a successful login.
func (l *Limiter) ResetLogin(ctx context.Context, email string) error {
	return l.redis.Del(ctx, fmt.Sprintf("login_attempts:%s", email)).Err()
}
