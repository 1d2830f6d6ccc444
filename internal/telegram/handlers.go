package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"xai-assistant/internal/analytics"
	"xai-assistant/internal/chat"
	"xai-assistant/internal/storage"
)

func (b *Bot) handleIncomingMessage(msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	s := b.session(msg.Chat.ID)
	_, err := s.Submit(msg.Text)
	switch {
	case err == nil:
		b.sendTyping(msg.Chat.ID)
	case errors.Is(err, chat.ErrEmptyInput), errors.Is(err, chat.ErrBusy):
		b.logger.Debug("message ignored", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	default:
		b.logger.Warn("submit failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.session(msg.Chat.ID)
	case "reset":
		b.manager.Close(sessionKey(msg.Chat.ID))
		b.session(msg.Chat.ID)
	case "report":
		b.handleReportCommand(msg)
	default:
		// unknown commands are treated as ordinary text
		s := b.session(msg.Chat.ID)
		if _, err := s.Submit(msg.Text); err == nil {
			b.sendTyping(msg.Chat.ID)
		}
	}
}

// handleReportCommand handles /report [YYYY-MM-DD] for the admin.
func (b *Bot) handleReportCommand(msg *tgbotapi.Message) {
	if b.adminUserID == 0 || msg.From == nil || msg.From.ID != b.adminUserID {
		b.sendMessage(msg.Chat.ID, "This command is only available to the administrator.")
		return
	}

	day := b.now().UTC()
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := time.Parse("2006-01-02", arg)
		if err != nil {
			b.sendMessage(msg.Chat.ID, "Usage: /report [YYYY-MM-DD]")
			return
		}
		day = parsed
	}

	report, err := b.Report(day)
	if err != nil {
		b.logger.Error("report generation failed", zap.Error(err))
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Report generation failed: %v", err))
		return
	}
	b.sendMessage(msg.Chat.ID, report)
}

// Report renders the activity summary for the calendar day of day.
func (b *Bot) Report(day time.Time) (string, error) {
	events, err := b.loadEvents()
	if err != nil {
		return "", err
	}
	return analytics.AnalyzeDailyLogs(events, day).GenerateReportSummary(), nil
}

func (b *Bot) loadEvents() ([]storage.Event, error) {
	if b.recorder == nil {
		return nil, errors.New("transcript storage is disabled")
	}
	events, err := b.recorder.LoadInteractions()
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	return events, nil
}

// SendDailyReport sends the summary of the last 24 hours to the admin. It
// is meant to be driven by the scheduler.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	if b.adminUserID == 0 {
		return errors.New("admin user is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	events, err := b.loadEvents()
	if err != nil {
		return err
	}
	b.sendMessage(b.adminUserID, analytics.AnalyzeLast24h(events, b.now().UTC()).GenerateReportSummary())
	return nil
}
