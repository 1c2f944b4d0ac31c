package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"NewsSentinel/internal/notifier"
	"NewsSentinel/internal/scheduler"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily watchlist reports and answer Telegram commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			log := app.Logger
			if err := cfg.ValidateServe(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			runner, err := buildRunner(cfg, log)
			if err != nil {
				return err
			}
			defer runner.Recorder.Close()

			// Context for graceful shutdown
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
			sched := scheduler.NewScheduler(ctx, runner, tn, runner.Recorder, cfg.Watchlist, cfg.LookbackDays, log)
			if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Info().Msg("telegram polling started")

			if cfg.Schedule.RunOnStart {
				log.Info().Msg("run_on_start enabled, executing daily task now")
				go sched.RunDailyNow()
			}

			log.Info().Str("cron", cfg.Schedule.DailyCron).Msg("NewsSentinel is running, press Ctrl+C to stop")
			<-ctx.Done()
			log.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
}
