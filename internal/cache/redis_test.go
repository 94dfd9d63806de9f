package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelpersWithoutRedis(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	assert.False(t, Enabled())
	assert.False(t, IsHealthy(ctx))

	RevokeSession(ctx, "token-1", time.Now().Add(time.Hour))
	assert.False(t, IsSessionRevoked(ctx, "token-1"))

	for i := 0; i < MaxLoginAttempts+1; i++ {
		RecordFailedLogin(ctx, "admin", "warden", "127.0.0.1")
	}
	assert.False(t, LoginLocked(ctx, "admin", "warden", "127.0.0.1"))
	ClearFailedLogins(ctx, "admin", "warden", "127.0.0.1")
	Close()
}
