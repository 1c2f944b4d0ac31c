package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL mode so report readers do not block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			start_date   TEXT NOT NULL,
			end_date     TEXT NOT NULL,
			duration_ms  INTEGER,
			bars         INTEGER,
			first_close  REAL,
			last_close   REAL,
			change_pct   REAL,
			period_high  REAL,
			period_low   REAL,
			total_volume INTEGER,
			sma20        REAL,
			rsi14        REAL,
			articles     INTEGER,
			report_path  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker_ts ON runs(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS pattern_signals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			label      TEXT,
			start_date TEXT,
			end_date   TEXT,
			confidence REAL,
			direction  TEXT,
			notes      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_run ON pattern_signals(run_id)`,

		`CREATE TABLE IF NOT EXISTS article_sentiments (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			article_id   TEXT NOT NULL,
			title        TEXT,
			url          TEXT,
			source       TEXT,
			published_at TEXT,
			sentiment    TEXT,
			confidence   REAL,
			impact_score REAL,
			event_tags   TEXT,
			reasoning    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sentiments_run ON article_sentiments(run_id)`,

		`CREATE TABLE IF NOT EXISTS correlated_insights (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id                 TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank                   INTEGER NOT NULL,
			article_id             TEXT NOT NULL,
			pattern_name           TEXT NOT NULL,
			correlation_confidence REAL,
			lag_days               INTEGER,
			summary                TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_run ON correlated_insights(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(s)[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run and its children in one transaction.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.RunID == "" {
		snap.RunID = uuid.NewString()
	}
	started := snap.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var bars int
	var firstClose, lastClose, changePct, high, low, sma20, rsi14 float64
	var volume int64
	if s := snap.Snapshot; s != nil {
		bars, firstClose, lastClose, changePct = s.Bars, s.FirstClose, s.LastClose, s.ChangePct
		high, low, volume, sma20 = s.PeriodHigh, s.PeriodLow, s.TotalVolume, s.SMA20
		if s.HasRSI {
			rsi14 = s.RSI14
		}
	}

	if _, err = tx.Exec(`INSERT INTO runs
		(id, timestamp, ticker, start_date, end_date, duration_ms,
		 bars, first_close, last_close, change_pct, period_high, period_low, total_volume, sma20, rsi14,
		 articles, report_path)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, started.Unix(), snap.Ticker, snap.Start, snap.End, snap.Duration.Milliseconds(),
		bars, firstClose, lastClose, changePct, high, low, volume, sma20, rsi14,
		len(snap.Articles), snap.ReportPath,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, p := range snap.Patterns {
		if _, err = tx.Exec(`INSERT INTO pattern_signals
			(run_id, name, label, start_date, end_date, confidence, direction, notes)
			VALUES (?,?,?,?,?,?,?,?)`,
			snap.RunID, p.Name, p.Label, p.StartDate, p.EndDate, p.Confidence, string(p.Direction), p.Notes,
		); err != nil {
			return fmt.Errorf("insert pattern: %w", err)
		}
	}

	byID := make(map[string]int, len(snap.Articles))
	for i, a := range snap.Articles {
		byID[a.ID] = i
	}
	for _, s := range snap.Sentiments {
		var title, url, source, published string
		if i, ok := byID[s.ArticleID]; ok {
			a := snap.Articles[i]
			title, url, source, published = a.Title, a.URL, a.Source, a.PublishedAt
		}
		tags, _ := json.Marshal(s.EventTags)
		if _, err = tx.Exec(`INSERT INTO article_sentiments
			(run_id, article_id, title, url, source, published_at, sentiment, confidence, impact_score, event_tags, reasoning)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			snap.RunID, s.ArticleID, title, url, source, published,
			string(s.Sentiment), s.Confidence, s.ImpactScore, string(tags), s.Reasoning,
		); err != nil {
			return fmt.Errorf("insert sentiment: %w", err)
		}
	}

	for rank, in := range snap.Insights {
		if _, err = tx.Exec(`INSERT INTO correlated_insights
			(run_id, rank, article_id, pattern_name, correlation_confidence, lag_days, summary)
			VALUES (?,?,?,?,?,?,?)`,
			snap.RunID, rank+1, in.ArticleID, in.PatternName, in.CorrelationConfidence, in.LagDays, in.Summary,
		); err != nil {
			return fmt.Errorf("insert insight: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first. An empty ticker matches all.
func (r *SQLiteRecorder) RecentRuns(ticker string, limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT r.id, r.ticker, r.start_date, r.end_date, r.timestamp, r.articles, r.report_path,
			(SELECT COUNT(*) FROM pattern_signals p WHERE p.run_id = r.id),
			(SELECT COUNT(*) FROM correlated_insights c WHERE c.run_id = r.id),
			COALESCE((SELECT MAX(c.correlation_confidence) FROM correlated_insights c WHERE c.run_id = r.id), 0)
		FROM runs r
		WHERE (? = '' OR r.ticker = ?)
		ORDER BY r.timestamp DESC, r.rowid DESC
		LIMIT ?`, ticker, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		var reportPath sql.NullString
		if err := rows.Scan(&s.RunID, &s.Ticker, &s.Start, &s.End, &ts, &s.Articles, &reportPath,
			&s.Patterns, &s.Insights, &s.TopScore); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.Unix(ts, 0)
		s.ReportPath = reportPath.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
