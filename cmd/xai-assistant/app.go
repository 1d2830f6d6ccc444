package main

import (
	"fmt"

	"go.uber.org/zap"

	"xai-assistant/internal/chat"
	"xai-assistant/internal/config"
	"xai-assistant/internal/llm"
	"xai-assistant/internal/remote"
	"xai-assistant/internal/responder"
	"xai-assistant/internal/storage"
)

func newSelector(cfg *config.Config) (*responder.Selector, error) {
	mode, err := responder.ParseMatchMode(cfg.MatchMode)
	if err != nil {
		return nil, err
	}
	return responder.Default(responder.WithMatchMode(mode)), nil
}

// newRemote returns the configured remote responder, or nil when replies
// are purely local.
func newRemote(cfg *config.Config, rules []responder.Rule) (chat.Remote, error) {
	switch cfg.RemoteProvider {
	case config.RemoteNone:
		return nil, nil
	case config.RemoteHTTP:
		return remote.New(cfg.RemoteEndpoint, remote.WithAPIKey(cfg.RemoteAPIKey)), nil
	case config.RemoteOpenAI, config.RemoteYandex:
		client, err := llm.NewFactory(cfg).CreateClient(string(cfg.RemoteProvider), cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("creating llm client: %w", err)
		}
		return llm.NewResponder(client, llm.LoadSystemPrompt(cfg.SystemPromptPath, rules)), nil
	default:
		return nil, fmt.Errorf("unknown remote provider: %q", cfg.RemoteProvider)
	}
}

func newReplier(cfg *config.Config, logger *zap.Logger) (*chat.Replier, error) {
	selector, err := newSelector(cfg)
	if err != nil {
		return nil, err
	}
	rem, err := newRemote(cfg, selector.Rules())
	if err != nil {
		return nil, err
	}
	opts := []chat.ReplierOption{
		chat.WithRemoteTimeout(cfg.RemoteTimeout),
		chat.WithReplierLogger(logger),
	}
	if rem != nil {
		opts = append(opts, chat.WithRemote(rem))
		logger.Info("remote responder enabled", zap.String("provider", string(cfg.RemoteProvider)))
	}
	return chat.NewReplier(selector, opts...), nil
}

// openRecorder returns nil when transcripts are disabled. The returned
// close function is always safe to call.
func openRecorder(cfg *config.Config) (storage.Recorder, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StorageBackend {
	case config.StorageNone:
		return nil, noop, nil
	case config.StorageSQLite:
		rec, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return rec, rec.Close, nil
	default:
		rec, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			return nil, noop, err
		}
		return rec, noop, nil
	}
}

func newManager(cfg *config.Config, replier *chat.Replier, rec storage.Recorder, logger *zap.Logger) *chat.Manager {
	opts := []chat.ManagerOption{
		chat.WithSessionDefaults(
			chat.WithDelay(chat.RandomDelay(cfg.ReplyDelayMin, cfg.ReplyDelayJitter)),
			chat.WithSessionLogger(logger),
		),
	}
	if rec != nil {
		opts = append(opts, chat.WithManagerListener(storage.ExchangeListener(rec, logger)))
	}
	return chat.NewManager(replier, opts...)
}
