package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lockout tracks failed login attempts per account in Redis. The
// attempt limit and lockout duration come from the security settings at
// call time, so a settings update takes effect immediately.
type Lockout struct {
	client *redis.Client
}

// NewLockout constructs a Lockout tracker.
func NewLockout(client *redis.Client) *Lockout {
	return &Lockout{client: client}
}

// Locked reports whether the account is currently locked out.
func (l *Lockout) Locked(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Exists(ctx, l.lockKey(email)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordFailure counts a failed attempt and reports whether it tripped
// the lockout. The attempt counter shares the lockout window so stale
// failures age out.
func (l *Lockout) RecordFailure(ctx context.Context, email string, maxAttempts int, lockFor time.Duration) (bool, error) {
	key := l.attemptsKey(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if err := l.client.Expire(ctx, key, lockFor).Err(); err != nil {
		return false, err
	}
	if maxAttempts > 0 && count >= int64(maxAttempts) {
		if err := l.client.Set(ctx, l.lockKey(email), "1", lockFor).Err(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Reset clears the failure count after a successful login.
func (l *Lockout) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.attemptsKey(email), l.lockKey(email)).Err()
}

func (l *Lockout) attemptsKey(email string) string {
	return "login_attempts:" + strings.ToLower(email)
}

func (l *Lockout) lockKey(email string) string {
	return "login_lockout:" + strings.ToLower(email)
}
