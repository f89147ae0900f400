package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadClientConfig(filepath.Join(t.TempDir(), "absent.hcl"))
		require.NoError(t, err)
		assert.Equal(t, DefaultClientConfig(), cfg)
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, 10*time.Second, cfg.ConnectTimeout())
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`
server {
  url = "https://cards.example.com"
}
ui {
  log_level = "debug"
}
`), 0o600))

		cfg, err := LoadClientConfig(path)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://cards.example.com", cfg.Server.URL)
		assert.Equal(t, 10, cfg.Server.ConnectTimeout)
		assert.Equal(t, "debug", cfg.UI.LogLevel)
		assert.Equal(t, "mendicot-client.log", cfg.UI.LogFile)
	})
}

func TestClientConfigValidate(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.UI.LogLevel = "chatty"
	assert.Error(t, cfg.Validate())

	cfg = DefaultClientConfig()
	cfg.Server.ConnectTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultClientConfig()
	cfg.Server.URL = "gopher://x"
	assert.Error(t, cfg.Validate())
}
