package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/notifier"
	"NewsSentinel/internal/pipeline"
	"NewsSentinel/internal/recorder"
)

// ReportRunner runs one report. *pipeline.Runner satisfies it.
type ReportRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Sender delivers a chat message. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the daily watchlist run and chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Runner       ReportRunner
	Notifier     Sender
	Recorder     recorder.Recorder
	Watchlist    []string
	LookbackDays int
	Ctx          context.Context

	log zerolog.Logger
	now func() time.Time
}

// NewScheduler creates a new Scheduler. tn and rec may be nil.
func NewScheduler(ctx context.Context, runner ReportRunner, tn Sender, rec recorder.Recorder, watchlist []string, lookbackDays int, logger zerolog.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	tickers := make([]string, 0, len(watchlist))
	for _, t := range watchlist {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			tickers = append(tickers, t)
		}
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Runner:       runner,
		Notifier:     tn,
		Recorder:     rec,
		Watchlist:    tickers,
		LookbackDays: lookbackDays,
		Ctx:          ctx,
		log:          logger.With().Str("component", "scheduler").Logger(),
		now:          time.Now,
	}
}

// RegisterAll registers the daily watchlist task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Strs("watchlist", s.Watchlist).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunDailyNow executes the daily task immediately (RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

// window is the request range ending today.
func (s *Scheduler) window(ticker string) pipeline.Request {
	end := s.now()
	start := end.AddDate(0, 0, -s.LookbackDays)
	return pipeline.Request{
		Ticker: ticker,
		Start:  start.Format(calculator.DateLayout),
		End:    end.Format(calculator.DateLayout),
	}
}

func (s *Scheduler) dailyTask() {
	s.log.Info().Int("tickers", len(s.Watchlist)).Msg("running daily task")
	for _, ticker := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		res, err := s.Runner.Run(s.Ctx, s.window(ticker))
		if err != nil {
			s.log.Error().Err(err).Str("ticker", ticker).Msg("daily report failed")
			s.trySend(fmt.Sprintf("❌ %s report failed: %s", ticker, html.EscapeString(err.Error())))
			continue
		}
		s.log.Info().Str("ticker", ticker).Str("path", res.ReportPath).Str("run_id", res.RunID).Msg("daily report done")
		s.trySend(notifier.FormatTelegramDigest(res.ReportInput()))
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats append the bot name: /report@SentinelBot AAPL.
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch cmd {
	case "/report":
		if len(fields) < 2 {
			return "Usage: /report TICKER"
		}
		res, err := s.Runner.Run(ctx, s.window(fields[1]))
		if err != nil {
			if errors.Is(err, pipeline.ErrInvalidRequest) {
				return html.EscapeString(err.Error())
			}
			s.log.Error().Err(err).Str("ticker", fields[1]).Msg("command report failed")
			return "❌ report failed, see logs"
		}
		return notifier.FormatTelegramDigest(res.ReportInput())
	case "/watchlist":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty."
		}
		return fmt.Sprintf("👀 <b>Watchlist</b> (%d-day lookback)\n%s", s.LookbackDays, strings.Join(s.Watchlist, ", "))
	case "/history":
		ticker := ""
		if len(fields) > 1 {
			ticker = strings.ToUpper(fields[1])
		}
		return s.history(ticker)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n" +
	"• /report TICKER: run a report over the lookback window\n" +
	"• /watchlist: tickers covered by the daily run\n" +
	"• /history [TICKER]: recent runs"

func (s *Scheduler) history(ticker string) string {
	runs, err := s.Recorder.RecentRuns(ticker, 5)
	if err != nil {
		s.log.Error().Err(err).Msg("read run history")
		return "❌ history unavailable"
	}
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "• %s %s → %s: %d patterns, %d insights (top %.2f), %s\n",
			html.EscapeString(r.Ticker), r.Start, r.End, r.Patterns, r.Insights, r.TopScore, humanize.Time(r.StartedAt))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
