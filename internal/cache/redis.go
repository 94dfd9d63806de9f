package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mess-backend/internal/config"
)

const (
	revokedKeyFmt = "session:revoked:%s"
	attemptKeyFmt = "login:attempts:%s:%s:%s"

	// MaxLoginAttempts failed logins within LoginWindow lock the username+IP.
	MaxLoginAttempts = 5
	LoginWindow      = 15 * time.Minute
)

var client *redis.Client

// Init connects to Redis. On failure the client stays nil and every helper
// below degrades to a no-op, so the app keeps working without Redis.
func Init(cfg *config.Config) error {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		client = nil
		return err
	}
	client = c
	return nil
}

// SetClient swaps the client, used by tests.
func SetClient(c *redis.Client) {
	client = c
}

func Close() {
	if client != nil {
		client.Close()
	}
}

// IsHealthy checks if Redis is connected and responding
func IsHealthy(ctx context.Context) bool {
	if client == nil {
		return false
	}
	return client.Ping(ctx).Err() == nil
}

// RevokeSession blocks a token id until its expiry.
func RevokeSession(ctx context.Context, tokenID string, until time.Time) {
	if client == nil || tokenID == "" {
		return
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return
	}
	client.Set(ctx, fmt.Sprintf(revokedKeyFmt, tokenID), 1, ttl)
}

// IsSessionRevoked reports whether a token id was logged out.
func IsSessionRevoked(ctx context.Context, tokenID string) bool {
	if client == nil || tokenID == "" {
		return false
	}
	n, err := client.Exists(ctx, fmt.Sprintf(revokedKeyFmt, tokenID)).Result()
	return err == nil && n > 0
}

// LoginLocked reports whether the role/username/IP has used up its attempts.
func LoginLocked(ctx context.Context, role, username, ip string) bool {
	if client == nil {
		return false
	}
	n, err := client.Get(ctx, fmt.Sprintf(attemptKeyFmt, role, username, ip)).Int()
	return err == nil && n >= MaxLoginAttempts
}

// RecordFailedLogin bumps the attempt counter, starting the window on the
// first failure.
func RecordFailedLogin(ctx context.Context, role, username, ip string) {
	if client == nil {
		return
	}
	key := fmt.Sprintf(attemptKeyFmt, role, username, ip)
	pipe := client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, LoginWindow)
	_, _ = pipe.Exec(ctx)
}

// ClearFailedLogins resets the counter after a successful login.
func ClearFailedLogins(ctx context.Context, role, username, ip string) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(attemptKeyFmt, role, username, ip))
}

// Enabled reports whether a Redis client is connected.
func Enabled() bool {
	return client != nil
}
