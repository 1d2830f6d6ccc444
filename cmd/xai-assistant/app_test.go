package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"xai-assistant/internal/chat"
	"xai-assistant/internal/config"
	"xai-assistant/internal/llm"
	"xai-assistant/internal/remote"
	"xai-assistant/internal/responder"
	"xai-assistant/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		MatchMode:      "substring",
		RemoteTimeout:  time.Second,
		StorageBackend: config.StorageFile,
		LogFilePath:    filepath.Join(dir, "log.jsonl"),
		SQLitePath:     filepath.Join(dir, "transcripts.db"),
		OpenAIModel:    "gpt-test",
	}
}

func TestNewSelector(t *testing.T) {
	cfg := testConfig(t)
	cfg.MatchMode = "word"
	s, err := newSelector(cfg)
	require.NoError(t, err)
	assert.Equal(t, responder.MatchWord, s.Mode())

	cfg.MatchMode = "fuzzy"
	_, err = newSelector(cfg)
	assert.Error(t, err)
}

func TestNewRemote(t *testing.T) {
	rules := responder.DefaultRules()
	cfg := testConfig(t)

	r, err := newRemote(cfg, rules)
	require.NoError(t, err)
	assert.Nil(t, r)

	cfg.RemoteProvider = config.RemoteHTTP
	cfg.RemoteEndpoint = "http://localhost:9/chat"
	r, err = newRemote(cfg, rules)
	require.NoError(t, err)
	assert.IsType(t, &remote.Client{}, r)

	cfg.RemoteProvider = config.RemoteOpenAI
	cfg.OpenAIAPIKey = "sk-test"
	cfg.SystemPromptPath = filepath.Join(t.TempDir(), "missing.txt")
	r, err = newRemote(cfg, rules)
	require.NoError(t, err)
	assert.IsType(t, &llm.Responder{}, r)

	cfg.RemoteProvider = "carrier-pigeon"
	_, err = newRemote(cfg, rules)
	assert.Error(t, err)
}

func TestOpenRecorder(t *testing.T) {
	cfg := testConfig(t)

	rec, closeFn, err := openRecorder(cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.FileRecorder{}, rec)
	assert.NoError(t, closeFn())

	cfg.StorageBackend = config.StorageSQLite
	rec, closeFn, err = openRecorder(cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLRecorder{}, rec)
	assert.NoError(t, closeFn())

	cfg.StorageBackend = config.StorageNone
	rec, closeFn, err = openRecorder(cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, closeFn())
}

func TestRunChat(t *testing.T) {
	cfg := testConfig(t)
	replier, err := newReplier(cfg, zap.NewNop())
	require.NoError(t, err)
	rec, _, err := openRecorder(cfg)
	require.NoError(t, err)

	manager := chat.NewManager(replier,
		chat.WithSessionDefaults(chat.WithDelay(func() time.Duration { return 0 })),
		chat.WithManagerListener(storage.ExchangeListener(rec, nil)))
	defer manager.CloseAll()

	var out bytes.Buffer
	in := strings.NewReader("email\n\n   \nnamaste\nexit\n")
	require.NoError(t, runChat(context.Background(), manager, in, &out))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, responder.WelcomeMessage))
	assert.Contains(t, got, "mrasr620107@gmail.com")
	assert.Contains(t, got, "Namaste! Xai-industries mein aapka swagat hai.")
	assert.Equal(t, 0, manager.Len())

	events, err := rec.LoadInteractions()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "terminal", events[0].Channel)
	assert.Equal(t, responder.RuleGreetingHindi, events[1].Rule)
}

func TestRunAsk(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runAsk(responder.Default(), "what's the weather", true, &out))
	assert.True(t, strings.HasPrefix(out.String(), "[off_topic]\n"))

	out.Reset()
	assert.ErrorIs(t, runAsk(responder.Default(), " \t ", false, &out), errEmptyMessage)
	assert.Empty(t, out.String())
}
