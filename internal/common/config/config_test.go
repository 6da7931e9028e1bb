package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
http_port: 8080
poll_interval: 7s
store_backend: sheet
sheet:
  menu_url: "https://example.com/menu.csv"
  orders_url: "https://example.com/orders.csv"
  webhook_url: "https://example.com/hook"
rabbitmq:
  enabled: true
  host: mq.local
  user: guest
  password: guest
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 7*time.Second, cfg.PollInterval)
	assert.Equal(t, "sheet", cfg.StoreBackend)
	assert.Equal(t, "https://example.com/hook", cfg.Sheet.WebhookURL)
	assert.True(t, cfg.Rabbit.Enabled)
	assert.Equal(t, 5672, cfg.Rabbit.Port)
	require.NoError(t, cfg.ValidateStore())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "store_backend: sheet\n"))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)

	// The sheet backend without URLs is usable for the subscriber but
	// not for the server.
	assert.Error(t, cfg.ValidateStore())
}

func TestValidateStoreUnknownBackend(t *testing.T) {
	cfg := App{StoreBackend: "redis"}
	assert.Error(t, cfg.ValidateStore())
}
