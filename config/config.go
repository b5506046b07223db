package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"copyTradeBot/internal/adapters/logger" // Import the logger package for LogLevel
	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/rules"
)

// Execution modes for venue adapters, selected at construction time.
const (
	ModeDryRun = "dryrun"
	ModeLive   = "live"
)

// Config holds all application configuration. It is constructed once at
// process start and passed into every component constructor; core logic
// never reads the environment.
type Config struct {
	// Copy policy
	DefaultVenue domain.Venue
	Rules        rules.CopyRuleConfig

	// Event source
	EventFeedPath   string
	TraderStatsPath string
	PollInterval    time.Duration
	PollBatchSize   int

	// Execution
	ExecutionMode string // ModeDryRun or ModeLive

	// Binance venue (live mode)
	BinanceAPIKey    string
	BinanceSecretKey string
	IsTestnet        bool

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Copy policy
	cfg.DefaultVenue = domain.Venue(strings.ToUpper(getEnv("DEFAULT_VENUE", string(domain.VenueGMX))))
	if cfg.DefaultVenue == "" {
		errs = append(errs, "DEFAULT_VENUE must be set")
	}

	// Empty allowlist means all markets permitted.
	if raw := getEnv("MARKET_ALLOWLIST", ""); raw != "" {
		for _, symbol := range strings.Split(raw, ",") {
			symbol = strings.TrimSpace(symbol)
			if symbol != "" {
				cfg.Rules.MarketAllowlist = append(cfg.Rules.MarketAllowlist, symbol)
			}
		}
	}

	cfg.Rules.MaxPositionSizeUsd, err = getEnvAsFloatRequired("MAX_POSITION_SIZE_USD", 5000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_POSITION_SIZE_USD: %v", err))
	} else if cfg.Rules.MaxPositionSizeUsd < 0 {
		errs = append(errs, "MAX_POSITION_SIZE_USD cannot be negative")
	}

	cfg.Rules.MaxLeverage, err = getEnvAsFloatRequired("MAX_LEVERAGE", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_LEVERAGE: %v", err))
	} else if cfg.Rules.MaxLeverage < 0 {
		errs = append(errs, "MAX_LEVERAGE cannot be negative")
	}

	cfg.Rules.MinROI, err = getEnvAsFloatRequired("MIN_TRADER_ROI", 0.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_TRADER_ROI: %v", err))
	}
	cfg.Rules.RequireConsistency = getEnvAsBool("REQUIRE_CONSISTENCY", false)
	cfg.Rules.DisallowHedge = getEnvAsBool("DISALLOW_HEDGE", false)

	// Event source
	cfg.EventFeedPath = getEnv("EVENT_FEED_PATH", "./data/otmo_events.jsonl")
	if cfg.EventFeedPath == "" {
		errs = append(errs, "EVENT_FEED_PATH must be set")
	}
	cfg.TraderStatsPath = getEnv("TRADER_STATS_PATH", "")

	pollIntervalSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 10)
	if pollIntervalSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollIntervalSeconds) * time.Second

	cfg.PollBatchSize = getEnvAsInt("POLL_BATCH_SIZE", 100)
	if cfg.PollBatchSize <= 0 {
		errs = append(errs, "POLL_BATCH_SIZE must be positive")
	}

	// Execution
	cfg.ExecutionMode = strings.ToLower(getEnv("EXECUTION_MODE", ModeDryRun))
	if cfg.ExecutionMode != ModeDryRun && cfg.ExecutionMode != ModeLive {
		errs = append(errs, fmt.Sprintf("EXECUTION_MODE must be %q or %q", ModeDryRun, ModeLive))
	}

	// Binance venue credentials are only required in live mode.
	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", "")
	cfg.BinanceSecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety
	if cfg.ExecutionMode == ModeLive {
		if cfg.BinanceAPIKey == "" {
			errs = append(errs, "BINANCE_API_KEY must be set in live mode")
		}
		if cfg.BinanceSecretKey == "" {
			errs = append(errs, "BINANCE_API_SECRET must be set in live mode")
		}
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/copy_trade_bot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
