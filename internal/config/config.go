package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"NewsSentinel/internal/logging"
	"NewsSentinel/internal/sentiment"
	"NewsSentinel/internal/strategy"
	"NewsSentinel/internal/tracing"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is set.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	News struct {
		// Providers are tried in order: marketaux, googlenews.
		Providers    []string `yaml:"providers"`
		MarketAuxKey string   `yaml:"marketaux_api_key"`
		Limit        int      `yaml:"limit"`
		GoogleLocale string   `yaml:"google_locale"`
		GoogleRegion string   `yaml:"google_region"`
	} `yaml:"news"`
	DataSource struct {
		// Provider is yahoo, barsapi or mock.
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	LLM struct {
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		Temperature float32 `yaml:"temperature"`
		Concurrency int     `yaml:"concurrency"`
	} `yaml:"llm"`
	Engine       strategy.Params `yaml:"engine"`
	Watchlist    []string        `yaml:"watchlist"`
	LookbackDays int             `yaml:"lookback_days"`
	Schedule     struct {
		DailyCron  string `yaml:"daily_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Cache struct {
		SentimentPath string `yaml:"sentiment_path"`
	} `yaml:"cache"`
	Reports struct {
		Dir string `yaml:"dir"`
	} `yaml:"reports"`
	Log     logging.Config `yaml:"log"`
	Tracing tracing.Config `yaml:"tracing"`
	Proxy   string         `yaml:"proxy"`
}

// Load reads .env, then the YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env only fills variables the process does not already have.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	// Engine keys absent from the file keep their defaults; explicit zeros stay.
	cfg := &Config{Log: logging.DefaultConfig(), Engine: strategy.DefaultParams()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	str("MARKETAUX_API_KEY", &c.News.MarketAuxKey)
	str("OPENAI_API_KEY", &c.LLM.APIKey)
	str("OPENAI_BASE_URL", &c.LLM.BaseURL)
	str("OPENAI_MODEL", &c.LLM.Model)
	str("BARS_API_BASE_URL", &c.DataSource.BaseURL)
	str("BARS_API_KEY", &c.DataSource.APIKey)
	str("HTTPS_PROXY", &c.Proxy)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("CRON_DAILY", &c.Schedule.DailyCron)
	str("LOG_LEVEL", &c.Log.Level)
	str("REPORTS_DIR", &c.Reports.Dir)

	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitList(v)
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LookbackDays = n
		}
	}
	if v := os.Getenv("LOG_TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Tracing.Enabled = b
		}
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Schedule.RunOnStart = b
		}
	}
}

func (c *Config) applyDefaults() {
	if len(c.News.Providers) == 0 {
		c.News.Providers = []string{"marketaux", "googlenews"}
	}
	if c.News.Limit == 0 {
		c.News.Limit = 20
	}
	if c.News.GoogleLocale == "" {
		c.News.GoogleLocale = "en-US"
	}
	if c.News.GoogleRegion == "" {
		c.News.GoogleRegion = "US"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "barsapi"
		}
	}
	if c.LLM.Model == "" {
		c.LLM.Model = sentiment.DefaultModel
	}
	if c.LLM.Concurrency == 0 {
		c.LLM.Concurrency = 4
	}
	if c.LookbackDays == 0 {
		c.LookbackDays = 7
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 30 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/news_sentinel.db"
	}
	if c.Cache.SentimentPath == "" {
		c.Cache.SentimentPath = "data/sentiment_cache.json"
	}
	if c.Reports.Dir == "" {
		c.Reports.Dir = "reports"
	}
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, strings.ToUpper(f))
	}
	return out
}

// Validate checks settings every command depends on.
func (c *Config) Validate() error {
	for _, p := range c.News.Providers {
		switch p {
		case "marketaux", "googlenews":
		default:
			return fmt.Errorf("news.providers: unknown provider %q", p)
		}
	}
	if c.News.Limit < 0 {
		return fmt.Errorf("news.limit must not be negative")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "barsapi":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for barsapi")
		}
	default:
		return fmt.Errorf("data_source.provider: unknown provider %q", c.DataSource.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2]")
	}
	if c.LLM.Concurrency < 0 {
		return fmt.Errorf("llm.concurrency must not be negative")
	}
	if c.LookbackDays < 0 {
		return fmt.Errorf("lookback_days must not be negative")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// ValidateServe adds the requirements of the daemon.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must name at least one ticker")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.DailyCron); err != nil {
		return fmt.Errorf("schedule.daily_cron: %w", err)
	}
	return nil
}
