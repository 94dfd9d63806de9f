package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	for _, key := range []string{
		"SESSION_SECRET", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"REDIS_ADDR", "REDIS_PASSWORD", "RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET",
		"TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	isolate(t)

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "hostel_mess", cfg.Database.Name)
	assert.Equal(t, 12, cfg.Session.ExpirationHours)
	assert.Equal(t, "s3cret", cfg.Session.FlashSecret)
	assert.False(t, cfg.Ledger.EnrollNewStudents)
	assert.False(t, cfg.RazorpayEnabled())
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "mess")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
	t.Setenv("TRUSTED_PROXIES", "127.0.0.1,10.0.0.0/8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:@db.internal:6543/mess?sslmode=disable", cfg.DSN())
	assert.True(t, cfg.RazorpayEnabled())
	assert.Equal(t, []string{"127.0.0.1", "10.0.0.0/8"}, cfg.Server.TrustedProxies)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	t.Setenv("SESSION_SECRET", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8088
ledger:
  enroll_new_students: true
institution:
  hostel_name: "Test Hostel"
`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.True(t, cfg.Ledger.EnrollNewStudents)
	assert.Equal(t, "Test Hostel", cfg.Institution.HostelName)
}
