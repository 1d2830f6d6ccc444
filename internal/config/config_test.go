package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "substring", cfg.MatchMode)
	assert.Equal(t, 1200*time.Millisecond, cfg.ReplyDelayMin)
	assert.Equal(t, 800*time.Millisecond, cfg.ReplyDelayJitter)
	assert.Equal(t, RemoteNone, cfg.RemoteProvider)
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, "0 21 * * *", cfg.ReportCron)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RESPONDER_MATCH_MODE", "word")
	t.Setenv("REPLY_DELAY_MIN", "0s")
	t.Setenv("REPLY_DELAY_JITTER", "0s")
	t.Setenv("REMOTE_PROVIDER", "http")
	t.Setenv("CHATBOT_API_ENDPOINT", "https://example.com/chat")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://xai.example,https://www.xai.example")
	t.Setenv("ADMIN_USER", "77")
	t.Setenv("STORAGE_BACKEND", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "word", cfg.MatchMode)
	assert.Zero(t, cfg.ReplyDelayMin)
	assert.Equal(t, RemoteHTTP, cfg.RemoteProvider)
	assert.Equal(t, "https://example.com/chat", cfg.RemoteEndpoint)
	assert.Equal(t, []string{"https://xai.example", "https://www.xai.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(77), cfg.AdminUserID)
	assert.Equal(t, StorageSQLite, cfg.StorageBackend)
}

func TestValidate(t *testing.T) {
	t.Run("http remote needs endpoint", func(t *testing.T) {
		t.Setenv("REMOTE_PROVIDER", "http")
		t.Setenv("CHATBOT_API_ENDPOINT", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("openai remote needs key", func(t *testing.T) {
		t.Setenv("REMOTE_PROVIDER", "openai")
		t.Setenv("OPENAI_API_KEY", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown remote", func(t *testing.T) {
		t.Setenv("REMOTE_PROVIDER", "carrier-pigeon")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "tape")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("negative delay", func(t *testing.T) {
		t.Setenv("REPLY_DELAY_MIN", "-1s")
		_, err := Load()
		assert.Error(t, err)
	})
}
