package storage

import (
	"go.uber.org/zap"

	"xai-assistant/internal/chat"
)

// ExchangeListener records every completed exchange. Write failures are
// logged and never reach the visitor.
func ExchangeListener(rec Recorder, logger *zap.Logger) chat.Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ex chat.Exchange) {
		ev := Event{
			Timestamp:         ex.Assistant.Timestamp.UTC(),
			SessionID:         ex.SessionID,
			Channel:           ex.Channel,
			UserMessage:       ex.User.Content,
			AssistantResponse: ex.Assistant.Content,
			Rule:              ex.Rule,
			Source:            string(ex.Source),
		}
		if err := rec.AppendInteraction(ev); err != nil {
			logger.Error("failed to record interaction",
				zap.String("session_id", ex.SessionID),
				zap.Error(err))
		}
	}
}
