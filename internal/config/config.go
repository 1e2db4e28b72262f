package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	WebhookURL      string
	BotName         string
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// API
	APIPort       int
	JournalAPIURL string

	// Trading day boundary, seconds east of UTC
	TradingDayOffsetSeconds int

	// Cache
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int

	// Histogram defaults
	HistogramBinYen  float64
	HistogramCapYen  float64
	HistogramBinPips float64
	HistogramCapPips float64

	// Logging
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Daily alerts (0 disables)
	AlertMaxDailyTrades  int
	AlertDailyLossLimit  float64
	AlertDailyProfitGoal float64
	AlertMaxLosingStreak int

	// Timing
	DigestIntervalMinutes int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "FXJournal"),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "fxjournal"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// API
		APIPort:       envInt("API_PORT", 3001),
		JournalAPIURL: envStr("JOURNAL_API_URL", "http://localhost:3001"),

		TradingDayOffsetSeconds: envInt("TRADING_DAY_OFFSET_SECONDS", 9*60*60),

		// Cache
		RedisAddr:       envStr("REDIS_ADDR", ""),
		RedisPassword:   envStr("REDIS_PASSWORD", ""),
		RedisDB:         envInt("REDIS_DB", 0),
		CacheTTLSeconds: envInt("CACHE_TTL_SECONDS", 300),

		// Histogram
		HistogramBinYen:  envFloat("HISTOGRAM_BIN_YEN", 1000),
		HistogramCapYen:  envFloat("HISTOGRAM_CAP_YEN", 10000),
		HistogramBinPips: envFloat("HISTOGRAM_BIN_PIPS", 5),
		HistogramCapPips: envFloat("HISTOGRAM_CAP_PIPS", 50),

		// Logging
		LogLevel:      envStr("LOG_LEVEL", "info"),
		LogFile:       envStr("LOG_FILE", ""),
		LogMaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups: envInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 30),
		LogCompress:   envBool("LOG_COMPRESS", false),

		// Alerts
		AlertMaxDailyTrades:  envInt("ALERT_MAX_DAILY_TRADES", 0),
		AlertDailyLossLimit:  envFloat("ALERT_DAILY_LOSS_LIMIT", 0),
		AlertDailyProfitGoal: envFloat("ALERT_DAILY_PROFIT_GOAL", 0),
		AlertMaxLosingStreak: envInt("ALERT_MAX_LOSING_STREAK", 0),

		// Timing
		DigestIntervalMinutes: envInt("DIGEST_INTERVAL_MINUTES", 10),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Sprintf("API_PORT %d out of range", c.APIPort))
	}
	if c.TradingDayOffsetSeconds <= -86400 || c.TradingDayOffsetSeconds >= 86400 {
		errs = append(errs, "TRADING_DAY_OFFSET_SECONDS must be within one day of UTC")
	}
	if c.HistogramBinYen <= 0 || c.HistogramBinPips <= 0 {
		errs = append(errs, "HISTOGRAM_BIN_YEN and HISTOGRAM_BIN_PIPS must be positive")
	}
	if c.AlertDailyLossLimit < 0 || c.AlertDailyProfitGoal < 0 {
		errs = append(errs, "ALERT_DAILY_LOSS_LIMIT and ALERT_DAILY_PROFIT_GOAL must not be negative")
	}
	if c.DigestIntervalMinutes <= 0 {
		errs = append(errs, "DIGEST_INTERVAL_MINUTES must be positive")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set. REST API has no authentication")
	}
	if c.RedisAddr == "" {
		fmt.Println("[WARN] REDIS_ADDR not set. Daily records are recomputed on every request")
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set. Daily digests are disabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== FX Journal Configuration ===")
	fmt.Printf("Database: %s@%s:%d/%s\n", c.DBUser, c.DBHost, c.DBPort, c.DBName)
	fmt.Printf("API Port: %d\n", c.APIPort)
	fmt.Printf("Trading Day Offset: %s\n", formatOffset(c.TradingDayOffsetSeconds))
	fmt.Println("--------------------------------------")
	fmt.Printf("Cache: %s\n", boolLabel(c.RedisAddr != "", c.RedisAddr, "disabled"))
	if c.RedisAddr != "" {
		fmt.Printf("  TTL: %ds\n", c.CacheTTLSeconds)
	}
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Printf("Digest Interval: every %d minutes\n", c.DigestIntervalMinutes)
	fmt.Printf("Daily Alerts: trades>%d loss<=-%.0f profit>=%.0f streak>=%d\n",
		c.AlertMaxDailyTrades, c.AlertDailyLossLimit, c.AlertDailyProfitGoal, c.AlertMaxLosingStreak)
	fmt.Println("--------------------------------------")
	fmt.Println("Histogram Defaults:")
	fmt.Printf("  Yen:  bin %.0f, cap %.0f\n", c.HistogramBinYen, c.HistogramCapYen)
	fmt.Printf("  Pips: bin %.1f, cap %.1f\n", c.HistogramBinPips, c.HistogramCapPips)
	fmt.Printf("Log Level: %s\n", c.LogLevel)
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

// formatOffset renders seconds east of UTC as "UTC+09:00".
func formatOffset(sec int) string {
	sign := "+"
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, sec/3600, (sec%3600)/60)
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
