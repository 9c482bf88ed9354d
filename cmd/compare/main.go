package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
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
	namesFlag := flag.String("strategies", "", "comma-separated strategy names (default: all)")
	saveFlag := flag.Bool("save", true, "persist each run to the database")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	// 3. Build the strategy set
	names := strategies.Names()
	if *namesFlag != "" {
		names = strings.Split(*namesFlag, ",")
	}
	strats := make([]ports.Strategy, 0, len(names))
	for _, name := range names {
		strat, err := strategies.New(strings.TrimSpace(name), cfg.StrategyParams)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		strats = append(strats, strat)
	}

	// 4. Load Bars
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open database: %v", err)
	}
	defer repo.Close()

	var bars []*domain.Bar
	if cfg.DataFile != "" {
		bars, err = utils.ReadBarsFromCSV(cfg.DataFile)
	} else {
		bars, err = repo.FindBars(ctx, cfg.Symbol, cfg.Interval, time.Time{}, time.Now().Add(24*time.Hour))
	}
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to load bars")
		log.Fatalf("FATAL: Failed to load bars: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("FATAL: No bars available for %s %s. Run fetch_bars first or set DATA_FILE.", cfg.Symbol, cfg.Interval)
	}
	appLogger.Info(ctx, "Loaded bars", map[string]interface{}{"count": len(bars)})

	// 5. Run the sweep
	engineCfg := backtest.EngineConfig{
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
	sweep := backtest.NewSweep(engineCfg, appLogger, runtime.NumCPU())
	results, err := sweep.Run(ctx, strats, bars)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Sweep failed")
		log.Fatalf("FATAL: Sweep failed: %v", err)
	}

	// 6. Report and persist
	report.WriteComparison(os.Stdout, results)

	if *saveFlag {
		for _, sr := range results {
			run := &ports.BacktestRun{
				Symbol:             cfg.Symbol,
				Strategy:           sr.Strategy,
				Interval:           cfg.Interval,
				CreatedAt:          time.Now(),
				InitialCapital:     sr.Result.InitialCapital,
				FinalCapital:       sr.Result.FinalCapital,
				TotalPnL:           sr.Result.TotalPnL,
				TotalReturnPercent: sr.Result.TotalReturnPercent,
				SharpeRatio:        sr.Result.SharpeRatio,
				MaxDrawdown:        sr.Result.MaxDrawdown,
				MaxDrawdownPercent: sr.Result.MaxDrawdownPercent,
				TotalCommission:    sr.Result.TotalCommission,
				TotalTrades:        sr.Result.TotalTrades,
				WinningTrades:      sr.Result.WinningTrades,
				LosingTrades:       sr.Result.LosingTrades,
				WinRate:            sr.Result.WinRate,
				ProfitFactor:       sr.Result.ProfitFactor,
				Trades:             sr.Result.Trades,
			}
			if _, err := repo.SaveRun(ctx, run); err != nil {
				appLogger.Warn(ctx, "Failed to persist run", map[string]interface{}{
					"strategy": sr.Strategy,
					"error":    err.Error(),
				})
			}
		}
		fmt.Printf("\nSaved %d runs to %s\n", len(results), cfg.DBPath)
	}
}
