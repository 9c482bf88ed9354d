package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"quantsim/config"
	"quantsim/internal/adapters/logger"
	"quantsim/internal/adapters/sqlite"
	"quantsim/internal/backtest"
	"quantsim/internal/domain"
	"quantsim/internal/ports"
	"quantsim/internal/report"
	"quantsim/internal/strategy/strategies"
	"quantsim/internal/utils"
)

func main() {
	strategyFlag := flag.String("strategy", "", "strategy name (overrides STRATEGY env)")
	dataFlag := flag.String("data", "", "CSV bar file (overrides DATA_FILE env)")
	chartFlag := flag.Bool("chart", true, "render the equity curve chart")
	tradesFlag := flag.Bool("trades", false, "print the individual trades")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}
	if *strategyFlag != "" {
		cfg.Strategy = *strategyFlag
	}
	if *dataFlag != "" {
		cfg.DataFile = *dataFlag
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Build Strategy
	strat, err := strategies.New(cfg.Strategy, cfg.StrategyParams)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to build strategy")
		log.Fatalf("FATAL: Failed to build strategy: %v", err)
	}

	// 4. Load Bars (CSV file takes priority over the cache)
	bars, repo, err := loadBars(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to load bars")
		log.Fatalf("FATAL: Failed to load bars: %v", err)
	}
	if repo != nil {
		defer repo.Close()
	}
	if len(bars) == 0 {
		log.Fatalf("FATAL: No bars available for %s %s. Run fetch_bars first or set DATA_FILE.", cfg.Symbol, cfg.Interval)
	}

	// 5. Run Backtest
	engine, err := backtest.NewEngine(engineConfig(cfg), strat, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to create engine")
		log.Fatalf("FATAL: Failed to create engine: %v", err)
	}
	result, err := engine.Run(ctx, bars)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Backtest failed")
		log.Fatalf("FATAL: Backtest failed: %v", err)
	}

	// 6. Report
	report.WriteSummary(os.Stdout, strat.Name(), result)
	if *tradesFlag {
		report.WriteTradeTable(os.Stdout, result)
	}

	if *chartFlag && len(result.EquityCurve) > 0 {
		chartPath, err := report.RenderEquityChart(result, strat.Name(), cfg.ReportDir)
		if err != nil {
			appLogger.Warn(ctx, "Failed to render equity chart", map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Printf("\nEquity chart: %s\n", chartPath)
		}
	}

	if len(result.Trades) > 0 {
		if err := os.MkdirAll(cfg.ReportDir, 0755); err == nil {
			tradesPath := filepath.Join(cfg.ReportDir, fmt.Sprintf("trades_%s.csv", strat.Name()))
			if err := utils.WriteTradesToCSV(result.Trades, tradesPath); err != nil {
				appLogger.Warn(ctx, "Failed to write trades CSV", map[string]interface{}{"error": err.Error()})
			} else {
				fmt.Printf("Trades CSV: %s\n", tradesPath)
			}
		}
	}

	// 7. Persist the run for later comparison
	if repo != nil {
		runID, err := repo.SaveRun(ctx, toBacktestRun(cfg, strat.Name(), result))
		if err != nil {
			appLogger.Warn(ctx, "Failed to persist run", map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Printf("Run saved with ID %d\n", runID)
		}
	}
}

// loadBars reads the bar series from the CSV file when configured, otherwise
// from the SQLite bar cache. The repository is returned so the caller can
// persist the run into the same database.
func loadBars(ctx context.Context, cfg *config.Config, appLogger ports.Logger) ([]*domain.Bar, *sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		return nil, nil, err
	}

	if cfg.DataFile != "" {
		bars, err := utils.ReadBarsFromCSV(cfg.DataFile)
		if err != nil {
			repo.Close()
			return nil, nil, fmt.Errorf("failed to read bars from %s: %w", cfg.DataFile, err)
		}
		appLogger.Info(ctx, "Loaded bars from CSV", map[string]interface{}{"file": cfg.DataFile, "count": len(bars)})
		return bars, repo, nil
	}

	// The whole cached history for the symbol/interval.
	bars, err := repo.FindBars(ctx, cfg.Symbol, cfg.Interval, time.Time{}, time.Now().Add(24*time.Hour))
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	appLogger.Info(ctx, "Loaded bars from cache", map[string]interface{}{
		"symbol":   cfg.Symbol,
		"interval": cfg.Interval,
		"count":    len(bars),
	})
	return bars, repo, nil
}

func engineConfig(cfg *config.Config) backtest.EngineConfig {
	return backtest.EngineConfig{
		Symbol:            cfg.Symbol,
		InitialCapital:    cfg.InitialCapital,
		CommissionRate:    cfg.CommissionRate,
		SlippageRate:      cfg.SlippageRate,
		CapitalAllocation: cfg.CapitalAllocation,
		Metrics: backtest.MetricsConfig{
			PeriodsPerYear: cfg.PeriodsPerYear,
			SampleStdDev:   cfg.SampleStdDev,
		},
	}
}

func toBacktestRun(cfg *config.Config, strategyName string, result *backtest.Result) *ports.BacktestRun {
	return &ports.BacktestRun{
		Symbol:             cfg.Symbol,
		Strategy:           strategyName,
		Interval:           cfg.Interval,
		CreatedAt:          time.Now(),
		InitialCapital:     result.InitialCapital,
		FinalCapital:       result.FinalCapital,
		TotalPnL:           result.TotalPnL,
		TotalReturnPercent: result.TotalReturnPercent,
		SharpeRatio:        result.SharpeRatio,
		MaxDrawdown:        result.MaxDrawdown,
		MaxDrawdownPercent: result.MaxDrawdownPercent,
		TotalCommission:    result.TotalCommission,
		TotalTrades:        result.TotalTrades,
		WinningTrades:      result.WinningTrades,
		LosingTrades:       result.LosingTrades,
		WinRate:            result.WinRate,
		ProfitFactor:       result.ProfitFactor,
		Trades:             result.Trades,
	}
}
