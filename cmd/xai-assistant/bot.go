package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"xai-assistant/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.TelegramBotToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN is required")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		replier, err := newReplier(cfg, logger)
		if err != nil {
			return err
		}
		rec, closeRec, err := openRecorder(cfg)
		if err != nil {
			return err
		}
		defer closeRec()

		manager := newManager(cfg, replier, rec, logger)
		defer manager.CloseAll()

		bot, err := telegram.New(cfg.TelegramBotToken, manager,
			telegram.WithRecorder(rec),
			telegram.WithAdmin(cfg.AdminUserID),
			telegram.WithLogger(logger))
		if err != nil {
			return err
		}

		sched := startReports(rec, bot)
		defer sched.Stop()

		bot.Start(ctx)
		return nil
	},
}
