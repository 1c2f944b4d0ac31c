package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/pipeline"
)

func newReportCmd(app *App) *cobra.Command {
	var (
		ticker, start, end, out string
		asJSON                  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run one report and print it",
		Example: `  sentinel report --ticker AAPL --start 2024-11-20 --end 2024-11-29
  sentinel report --ticker TSLA --start 2024-11-01 --end 2024-11-15 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if end == "" {
				end = time.Now().Format(calculator.DateLayout)
			}
			if start == "" {
				if t, err := time.Parse(calculator.DateLayout, end); err == nil {
					start = t.AddDate(0, 0, -cfg.LookbackDays).Format(calculator.DateLayout)
				}
			}
			if cmd.Flags().Changed("out") {
				cfg.Reports.Dir = out
			}

			runner, err := buildRunner(cfg, app.Logger)
			if err != nil {
				return err
			}
			defer runner.Recorder.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := runner.Run(ctx, pipeline.Request{Ticker: ticker, Start: start, End: end})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintln(os.Stdout, res.Markdown)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "stock ticker, e.g. AAPL")
	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD (default: end minus lookback_days)")
	cmd.Flags().StringVar(&end, "end", "", "end date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "report directory (default: reports.dir, \"\" skips the file)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	_ = cmd.MarkFlagRequired("ticker")
	return cmd
}
