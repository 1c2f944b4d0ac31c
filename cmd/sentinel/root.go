package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"NewsSentinel/internal/config"
	"NewsSentinel/internal/logging"
	"NewsSentinel/internal/tracing"
)

// App holds state shared by the subcommands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "NewsSentinel links news sentiment to price patterns",
		Long: `NewsSentinel collects news and daily prices for a ticker, scores each
article's sentiment with an LLM, detects simple price patterns and ranks
how plausibly the news preceded them.

Use 'sentinel report' for a one-shot markdown report and 'sentinel serve'
for the daily watchlist run with Telegram delivery.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Log.Level = "debug"
			}
			app.Config = cfg
			app.Logger = logging.New(cfg.Log)

			if err := tracing.Init(cfg.Tracing); err != nil {
				app.Logger.Warn().Err(err).Msg("tracing disabled")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx); err != nil {
				app.Logger.Warn().Err(err).Msg("tracing shutdown")
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	return rootCmd
}
