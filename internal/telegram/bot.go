package telegram

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"xai-assistant/internal/chat"
	"xai-assistant/internal/storage"
)

// Channel is recorded on every exchange that arrives through the bot.
const Channel = "telegram"

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	manager     *chat.Manager
	recorder    storage.Recorder
	adminUserID int64
	logger      *zap.Logger
	now         func() time.Time
}

type Option func(*Bot)

// WithRecorder enables /report.
func WithRecorder(r storage.Recorder) Option {
	return func(b *Bot) { b.recorder = r }
}

func WithAdmin(userID int64) Option {
	return func(b *Bot) { b.adminUserID = userID }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}

func New(botToken string, manager *chat.Manager, opts ...Option) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, manager, opts...)
	b.api = api
	b.logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return b, nil
}

func newBot(s sender, manager *chat.Manager, opts ...Option) *Bot {
	b := &Bot{
		s:       s,
		manager: manager,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(update.Message)
			}
		}
	}
}

func sessionKey(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

// session returns the chat's conversation, greeting the visitor when it is
// new. Replies are pushed back to the chat as they arrive.
func (b *Bot) session(chatID int64) *chat.Session {
	s, created := b.manager.GetOrCreate(sessionKey(chatID), Channel,
		chat.WithListener(func(ex chat.Exchange) {
			b.sendMessage(chatID, ex.Assistant.Content)
		}),
	)
	if created {
		if turns := s.Turns(); len(turns) > 0 {
			b.sendMessage(chatID, turns[0].Content)
		}
	}
	return s
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.s.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("failed to send chat action", zap.Error(err))
	}
}
