package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL           string
	CoinGeckoURL          string
	CoinGeckoAPIKey       string
	CoinGeckoDelay        time.Duration
	CoinGeckoRetryMax     int
	MarketRefreshPause    time.Duration
	PriceWorkerInterval   time.Duration
	ReportWorkerInterval  time.Duration
	HTTPPort              string
	AdminAPIKey           string
	MaxAssetsInChart      int
	SheetsSpreadsheetID   string
	SheetsCredentialsJSON string
	XLSXReportPath        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:           envOrDefaultWarn("DATABASE_URL", ""),
		CoinGeckoURL:          envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoAPIKey:       envOrDefault("COINGECKO_API_KEY", ""),
		CoinGeckoDelay:        envOrDefaultDuration("COINGECKO_DELAY", 6*time.Second),
		CoinGeckoRetryMax:     envOrDefaultInt("COINGECKO_RETRY_MAX", 5),
		MarketRefreshPause:    envOrDefaultDuration("MARKET_REFRESH_PAUSE", 2*time.Second),
		PriceWorkerInterval:   envOrDefaultDuration("PRICE_WORKER_INTERVAL", 1*time.Hour),
		ReportWorkerInterval:  envOrDefaultDuration("REPORT_WORKER_INTERVAL", 24*time.Hour),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:           envOrDefaultWarn("ADMIN_API_KEY", ""),
		MaxAssetsInChart:      envOrDefaultInt("MAX_ASSETS_IN_CHART", 5),
		SheetsSpreadsheetID:   envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsJSON: envOrDefault("SHEETS_CREDENTIALS_JSON", ""),
		XLSXReportPath:        envOrDefault("XLSX_REPORT_PATH", "portfolio_report.xlsx"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
