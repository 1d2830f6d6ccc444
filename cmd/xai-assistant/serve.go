package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"xai-assistant/internal/analytics"
	"xai-assistant/internal/httpapi"
	"xai-assistant/internal/scheduler"
	"xai-assistant/internal/storage"
	"xai-assistant/internal/telegram"
)

var (
	serveAddr     string
	serveTelegram bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the website chat widget API",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		addr := cfg.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := httpapi.New(manager,
			httpapi.WithRecorder(rec),
			httpapi.WithLogger(logger),
			httpapi.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		)

		var bot *telegram.Bot
		if serveTelegram {
			if cfg.TelegramBotToken == "" {
				return errors.New("TELEGRAM_BOT_TOKEN is required with --telegram")
			}
			bot, err = telegram.New(cfg.TelegramBotToken, manager,
				telegram.WithRecorder(rec),
				telegram.WithAdmin(cfg.AdminUserID),
				telegram.WithLogger(logger))
			if err != nil {
				return err
			}
		}

		sched := startReports(rec, bot)
		defer sched.Stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Start(addr) })
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		if bot != nil {
			g.Go(func() error {
				bot.Start(gctx)
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&serveTelegram, "telegram", false, "also run the Telegram bot on the same sessions")
}

// startReports schedules the daily summary. With a bot and an admin the
// summary is sent over Telegram, otherwise it is logged.
func startReports(rec storage.Recorder, bot *telegram.Bot) *scheduler.Scheduler {
	sched := scheduler.New(cfg.ReportCron, logger)
	if rec == nil {
		return sched
	}
	if bot != nil && cfg.AdminUserID != 0 {
		sched.SetReportFunction(bot.SendDailyReport)
	} else {
		sched.SetReportFunction(func(ctx context.Context) error {
			events, err := rec.LoadInteractions()
			if err != nil {
				return err
			}
			stats := analytics.AnalyzeLast24h(events, time.Now().UTC())
			logger.Info("daily report",
				zap.Time("from", stats.From),
				zap.Time("to", stats.To),
				zap.Int("messages", stats.TotalMessages),
				zap.Int("sessions", stats.UniqueSessions),
				zap.Int("fallbacks", stats.Fallbacks),
				zap.Any("rule_hits", stats.RuleHits))
			return nil
		})
	}
	if err := sched.Start(); err != nil {
		logger.Error("failed to start report scheduler", zap.Error(err))
	}
	return sched
}
