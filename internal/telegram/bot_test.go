package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"xai-assistant/internal/chat"
	"xai-assistant/internal/responder"
	"xai-assistant/internal/storage"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	actions int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, m)
	case tgbotapi.ChatActionConfig:
		f.actions++
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type memRecorder struct {
	mu     sync.Mutex
	events []storage.Event
}

func (r *memRecorder) AppendInteraction(ev storage.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *memRecorder) LoadInteractions() ([]storage.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]storage.Event(nil), r.events...), nil
}

func newTestBot(t *testing.T, opts ...Option) (*Bot, *fakeSender) {
	t.Helper()
	m := chat.NewManager(chat.NewReplier(responder.Default()),
		chat.WithSessionDefaults(chat.WithDelay(func() time.Duration { return 0 })))
	t.Cleanup(m.CloseAll)
	fs := &fakeSender{}
	return newBot(fs, m, opts...), fs
}

func textMessage(chatID, userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func commandMessage(chatID, userID int64, text string) *tgbotapi.Message {
	msg := textMessage(chatID, userID, text)
	cmd := strings.Fields(text)[0]
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return msg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartCommand_SendsWelcome(t *testing.T) {
	b, fs := newTestBot(t)
	b.handleIncomingMessage(commandMessage(10, 1, "/start"))

	sent := fs.texts()
	if len(sent) != 1 || sent[0] != responder.WelcomeMessage {
		t.Fatalf("unexpected sent: %q", sent)
	}
	// a second /start keeps the same conversation
	b.handleIncomingMessage(commandMessage(10, 1, "/start"))
	if len(fs.texts()) != 1 {
		t.Fatalf("welcome repeated: %q", fs.texts())
	}
}

func TestTextMessage_RepliesWithRule(t *testing.T) {
	b, fs := newTestBot(t)
	b.handleIncomingMessage(textMessage(10, 1, "What is the price?"))

	waitFor(t, func() bool { return len(fs.texts()) == 2 })
	sent := fs.texts()
	if sent[0] != responder.WelcomeMessage {
		t.Fatalf("first message should be the welcome, got %q", sent[0])
	}
	if !strings.Contains(sent[1], "management team can guide") {
		t.Fatalf("expected pricing reply, got %q", sent[1])
	}
	fs.mu.Lock()
	actions := fs.actions
	fs.mu.Unlock()
	if actions != 1 {
		t.Fatalf("expected one typing action, got %d", actions)
	}
}

func TestResetCommand_StartsNewConversation(t *testing.T) {
	b, fs := newTestBot(t)
	b.handleIncomingMessage(commandMessage(10, 1, "/start"))
	first, _ := b.manager.Get(sessionKey(10))

	b.handleIncomingMessage(commandMessage(10, 1, "/reset"))
	second, ok := b.manager.Get(sessionKey(10))
	if !ok || second == first {
		t.Fatalf("expected a fresh session after reset")
	}
	if len(second.Turns()) != 1 {
		t.Fatalf("new session should only hold the welcome, got %d turns", len(second.Turns()))
	}
	if len(fs.texts()) != 2 {
		t.Fatalf("expected welcome twice, got %q", fs.texts())
	}
}

func TestReportCommand_AdminOnly(t *testing.T) {
	rec := &memRecorder{}
	b, fs := newTestBot(t, WithAdmin(99), WithRecorder(rec))

	b.handleIncomingMessage(commandMessage(10, 1, "/report"))
	if sent := fs.texts(); len(sent) != 1 || !strings.Contains(sent[0], "administrator") {
		t.Fatalf("non-admin should be refused: %q", sent)
	}
}

func TestReportCommand_SummarizesDay(t *testing.T) {
	rec := &memRecorder{}
	day := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	_ = rec.AppendInteraction(storage.Event{Timestamp: day.Add(time.Hour), SessionID: "a", Channel: "web", UserMessage: "price", Rule: "pricing", Source: "local"})
	_ = rec.AppendInteraction(storage.Event{Timestamp: day.Add(2 * time.Hour), SessionID: "b", Channel: "telegram", UserMessage: "email", Rule: "contact", Source: "local"})

	b, fs := newTestBot(t, WithAdmin(99), WithRecorder(rec))
	b.handleIncomingMessage(commandMessage(99, 99, "/report 2026-02-03"))

	sent := fs.texts()
	if len(sent) != 1 {
		t.Fatalf("expected one report, got %q", sent)
	}
	if !strings.Contains(sent[0], "2026-02-03") || !strings.Contains(sent[0], "Messages: 2") {
		t.Fatalf("unexpected report: %q", sent[0])
	}

	b.handleIncomingMessage(commandMessage(99, 99, "/report yesterday"))
	if sent := fs.texts(); !strings.Contains(sent[len(sent)-1], "Usage") {
		t.Fatalf("expected usage hint, got %q", sent[len(sent)-1])
	}
}

func TestSendDailyReport(t *testing.T) {
	b, _ := newTestBot(t)
	if err := b.SendDailyReport(context.Background()); err == nil {
		t.Fatalf("expected error without admin")
	}

	b, fs := newTestBot(t, WithAdmin(5), WithRecorder(&memRecorder{}))
	b.now = func() time.Time { return time.Date(2026, 2, 3, 21, 0, 0, 0, time.UTC) }
	if err := b.SendDailyReport(context.Background()); err != nil {
		t.Fatalf("send report: %v", err)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.sent) != 1 || fs.sent[0].ChatID != 5 {
		t.Fatalf("report not sent to admin: %+v", fs.sent)
	}
}

func TestSendDailyReport_IncludesPreviousEvening(t *testing.T) {
	rec := &memRecorder{}
	_ = rec.AppendInteraction(storage.Event{
		Timestamp: time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC), SessionID: "a", Channel: "telegram",
		UserMessage: "email", Rule: "contact", Source: "local",
	})

	b, fs := newTestBot(t, WithAdmin(5), WithRecorder(rec))
	b.now = func() time.Time { return time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC) }
	if err := b.SendDailyReport(context.Background()); err != nil {
		t.Fatalf("send report: %v", err)
	}
	sent := fs.texts()
	if len(sent) != 1 || !strings.Contains(sent[0], "Messages: 1") {
		t.Fatalf("late-evening exchange missing from report: %q", sent)
	}
}
