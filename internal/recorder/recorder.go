package recorder

import (
	"time"

	"NewsSentinel/internal/model"
)

// RunSnapshot holds everything produced by one pipeline run.
type RunSnapshot struct {
	RunID      string // assigned by RecordRun when empty
	Ticker     string
	Start      string
	End        string
	StartedAt  time.Time
	Duration   time.Duration
	ReportPath string

	Snapshot   *model.PriceSnapshot
	Articles   []model.Article
	Sentiments []model.ArticleSentiment
	Patterns   []model.PatternSignal
	Insights   []model.CorrelatedInsight
}

// RunSummary is one row of run history.
type RunSummary struct {
	RunID      string
	Ticker     string
	Start      string
	End        string
	StartedAt  time.Time
	Articles   int
	Patterns   int
	Insights   int
	TopScore   float64
	ReportPath string
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	RecentRuns(ticker string, limit int) ([]RunSummary, error)
	Close() error
}
