package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("DEBUG", "")

	path := writeConfig(t, `
telegram_bot:
  token: file-token
api:
  base_url: https://api.example.com
timer:
  tick: 2s
  refresh_interval: 10s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.TelegramBot.Token, "токен из окружения важнее файла")
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Timer.Tick)
	assert.Equal(t, 10*time.Second, cfg.Timer.RefreshInterval)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("STORAGE_TYPE", "")

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "нет токена и адреса API",
			body: "server:\n  port: \"9000\"\n",
			want: "telegram_bot.token is required",
		},
		{
			name: "postgres без параметров базы",
			body: "telegram_bot:\n  token: t\napi:\n  base_url: http://x\nstorage:\n  type: postgres\n",
			want: "database.host and database.dbname are required",
		},
		{
			name: "неизвестное хранилище",
			body: "telegram_bot:\n  token: t\napi:\n  base_url: http://x\nstorage:\n  type: redis\n",
			want: `unknown storage.type "redis"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
