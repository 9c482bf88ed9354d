package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"quantsim/internal/adapters/logger"
	"quantsim/internal/strategy/strategies"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (optional; kline endpoints are public)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Simulation Parameters
	Symbol            string
	Interval          string
	InitialCapital    float64
	CommissionRate    float64 // e.g., 0.001 for 0.1% per fill
	SlippageRate      float64 // e.g., 0.0005 for 0.05% adverse move per fill
	CapitalAllocation float64 // Fraction of free cash committed per buy, (0, 1]

	// Metrics Conventions
	PeriodsPerYear int  // Annualization factor (252 for daily bars)
	SampleStdDev   bool // Sample (n-1) vs population stddev for Sharpe

	// Strategy Selection
	Strategy       string // One of strategies.Names()
	StrategyParams strategies.Params

	// Data Sources
	DataFile string // Optional CSV bar file; takes priority over the bar cache
	DBPath   string

	// Reporting
	ReportDir string

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

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Simulation Parameters
	cfg.Symbol = getEnv("SYMBOL", "ETHUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.Interval = getEnv("INTERVAL", "1d")

	cfg.InitialCapital, err = getEnvAsFloatRequired("INITIAL_CAPITAL", 10000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_CAPITAL: %v", err))
	} else if cfg.InitialCapital <= 0 {
		errs = append(errs, "INITIAL_CAPITAL must be positive")
	}

	cfg.CommissionRate, err = getEnvAsFloatRequired("COMMISSION_RATE", 0.001)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid COMMISSION_RATE: %v", err))
	} else if cfg.CommissionRate < 0 {
		errs = append(errs, "COMMISSION_RATE cannot be negative")
	}

	cfg.SlippageRate, err = getEnvAsFloatRequired("SLIPPAGE_RATE", 0.0005)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SLIPPAGE_RATE: %v", err))
	} else if cfg.SlippageRate < 0 {
		errs = append(errs, "SLIPPAGE_RATE cannot be negative")
	}

	// The default leaves headroom for slippage and commission: sizing an
	// order from 100% of cash would push the total cost above the balance
	// and every buy would be rejected.
	cfg.CapitalAllocation, err = getEnvAsFloatRequired("CAPITAL_ALLOCATION", 0.95)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CAPITAL_ALLOCATION: %v", err))
	} else if cfg.CapitalAllocation <= 0 || cfg.CapitalAllocation > 1 {
		errs = append(errs, "CAPITAL_ALLOCATION must be in (0.0, 1.0]")
	}

	// Metrics Conventions
	cfg.PeriodsPerYear = getEnvAsInt("PERIODS_PER_YEAR", 252)
	if cfg.PeriodsPerYear <= 0 {
		errs = append(errs, "PERIODS_PER_YEAR must be positive")
	}
	cfg.SampleStdDev = getEnvAsBool("SHARPE_SAMPLE_STDDEV", true)

	// Strategy Selection
	cfg.Strategy = strings.ToLower(getEnv("STRATEGY", "rsi"))
	cfg.StrategyParams = loadStrategyParams()
	if cfg.StrategyParams.RSIOverbought <= cfg.StrategyParams.RSIOversold ||
		cfg.StrategyParams.RSIOverbought > 100 || cfg.StrategyParams.RSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (Overbought must be > Oversold, between 0-100)")
	}
	if cfg.StrategyParams.FastMAPeriod >= cfg.StrategyParams.SlowMAPeriod {
		errs = append(errs, "FAST_MA_PERIOD must be less than SLOW_MA_PERIOD")
	}

	// Data Sources
	cfg.DataFile = getEnv("DATA_FILE", "")
	cfg.DBPath = getEnv("DB_PATH", "./data/quantsim.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Reporting
	cfg.ReportDir = getEnv("REPORT_DIR", "./reports")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func loadStrategyParams() strategies.Params {
	p := strategies.DefaultParams()
	p.RSIPeriod = getEnvAsInt("RSI_PERIOD", p.RSIPeriod)
	p.RSIOversold = getEnvAsFloat("RSI_OVERSOLD", p.RSIOversold)
	p.RSIOverbought = getEnvAsFloat("RSI_OVERBOUGHT", p.RSIOverbought)
	p.MACDFastPeriod = getEnvAsInt("MACD_FAST_PERIOD", p.MACDFastPeriod)
	p.MACDSlowPeriod = getEnvAsInt("MACD_SLOW_PERIOD", p.MACDSlowPeriod)
	p.MACDSignalPeriod = getEnvAsInt("MACD_SIGNAL_PERIOD", p.MACDSignalPeriod)
	p.BollingerPeriod = getEnvAsInt("BOLLINGER_PERIOD", p.BollingerPeriod)
	p.BollingerNumStd = getEnvAsFloat("BOLLINGER_NUM_STD", p.BollingerNumStd)
	p.FastMAPeriod = getEnvAsInt("FAST_MA_PERIOD", p.FastMAPeriod)
	p.SlowMAPeriod = getEnvAsInt("SLOW_MA_PERIOD", p.SlowMAPeriod)
	p.ConsensusThreshold = getEnvAsInt("CONSENSUS_THRESHOLD", p.ConsensusThreshold)
	return p
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		// Return error if env var is set but invalid
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
