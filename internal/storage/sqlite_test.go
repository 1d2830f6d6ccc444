package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xai-assistant/internal/chat"
	"xai-assistant/internal/responder"
)

func TestSQLRecorder_AppendAndLoad(t *testing.T) {
	rec, err := OpenSQLiteMemory()
	require.NoError(t, err)
	defer rec.Close()

	ev1 := Event{Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC), SessionID: "s1", Channel: "web", UserMessage: "price?", AssistantResponse: "call us", Rule: "pricing", Source: "local"}
	ev2 := Event{Timestamp: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), SessionID: "s2", Channel: "telegram", UserMessage: "hey", AssistantResponse: "hi", Source: "remote"}
	require.NoError(t, rec.AppendInteraction(ev1))
	require.NoError(t, rec.AppendInteraction(ev2))

	events, err := rec.LoadInteractions()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ev1, events[0])
	assert.Equal(t, ev2, events[1])
}

func TestSQLRecorder_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data", "transcripts.db")
	rec, err := OpenSQLite(p)
	require.NoError(t, err)
	require.NoError(t, rec.AppendInteraction(Event{Timestamp: time.Now(), SessionID: "x", UserMessage: "a", AssistantResponse: "b"}))
	require.NoError(t, rec.Close())

	reopened, err := OpenSQLite(p)
	require.NoError(t, err)
	defer reopened.Close()
	events, err := reopened.LoadInteractions()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestExchangeListener_RecordsSessionReplies(t *testing.T) {
	rec, err := OpenSQLiteMemory()
	require.NoError(t, err)
	defer rec.Close()

	m := chat.NewManager(chat.NewReplier(responder.Default()),
		chat.WithSessionDefaults(chat.WithDelay(func() time.Duration { return 0 })),
		chat.WithManagerListener(ExchangeListener(rec, nil)),
	)
	defer m.CloseAll()

	s := m.Create("web")
	_, err = s.Submit("email")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))

	events, err := rec.LoadInteractions()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, s.ID(), events[0].SessionID)
	assert.Equal(t, "web", events[0].Channel)
	assert.Equal(t, "email", events[0].UserMessage)
	assert.Equal(t, responder.RuleContact, events[0].Rule)
	assert.Equal(t, "local", events[0].Source)
}
