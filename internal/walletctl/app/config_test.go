package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"WALLET_API_URL", "WALLET_NOTIFICATIONS_URL", "WALLET_PRIVATE_KEY",
	"WALLET_TOKEN_DB", "WALLET_MASTER_KEY", "WALLET_RATE_LIMIT",
	"WALLET_RATE_BURST", "WALLET_HTTP_TIMEOUT", "ENV", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "walletctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.RateBurst)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.APIURL)
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, `
api_url: https://wallet.example.com
private_key: abc
token_db: /tmp/tokens.db
rate_limit: 2.5
rate_burst: 5
http_timeout: 3s
log_level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://wallet.example.com", cfg.APIURL)
	assert.Equal(t, "abc", cfg.PrivateKey)
	assert.Equal(t, "/tmp/tokens.db", cfg.TokenDB)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 5, cfg.RateBurst)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "api_url: https://file.example.com\nprivate_key: abc\n")
	t.Setenv("WALLET_API_URL", "https://env.example.com")
	t.Setenv("WALLET_RATE_LIMIT", "7")
	t.Setenv("WALLET_RATE_BURST", "not-a-number")
	t.Setenv("WALLET_HTTP_TIMEOUT", "30")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.APIURL)
	assert.Equal(t, "abc", cfg.PrivateKey)
	assert.Equal(t, 7.0, cfg.RateLimit)
	assert.Equal(t, 1, cfg.RateBurst)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadConfig(writeFile(t, "api_ulr: typo\n"))
	require.ErrorContains(t, err, "failed to parse config file")

	cfg, err := LoadConfig(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := Config{APIURL: "https://wallet.example.com", PrivateKey: "abc", HTTPTimeout: time.Second}
	require.NoError(t, valid.Validate())

	noKey := valid
	noKey.PrivateKey = ""
	require.ErrorContains(t, noKey.Validate(), "private key")

	negative := valid
	negative.RateLimit = -1
	require.Error(t, negative.Validate())

	noTimeout := valid
	noTimeout.HTTPTimeout = 0
	require.Error(t, noTimeout.Validate())
}
