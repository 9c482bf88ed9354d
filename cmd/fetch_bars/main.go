package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"quantsim/config"
	"quantsim/internal/adapters/binanceclient"
	"quantsim/internal/adapters/logger"
	"quantsim/internal/adapters/sqlite"
	"quantsim/internal/domain"
	"quantsim/internal/utils"
)

func main() {
	daysFlag := flag.Int("days", 365, "how many days of history to fetch")
	csvFlag := flag.String("csv", "", "also write the fetched bars to this CSV file")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Market Data Client
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	if err := client.Ping(ctx); err != nil {
		appLogger.Error(ctx, err, "FATAL: Market data provider unreachable")
		log.Fatalf("FATAL: Market data provider unreachable: %v", err)
	}

	// 4. Fetch
	end := time.Now()
	start := end.AddDate(0, 0, -*daysFlag)
	fmt.Printf("Fetching %s %s bars from %s to %s...\n",
		cfg.Symbol, cfg.Interval, start.Format("2006-01-02"), end.Format("2006-01-02"))

	bars, err := client.GetBarsRange(ctx, cfg.Symbol, cfg.Interval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching bars")
		log.Fatalf("Error fetching bars: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("No bars returned for %s %s in the requested window", cfg.Symbol, cfg.Interval)
	}
	if err := domain.ValidateBars(bars); err != nil {
		appLogger.Error(ctx, err, "Fetched series failed validation")
		log.Fatalf("Fetched series failed validation: %v", err)
	}

	// 5. Store in the bar cache
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to open bar cache")
		log.Fatalf("FATAL: Failed to open bar cache: %v", err)
	}
	defer repo.Close()

	if err := repo.SaveBars(ctx, bars); err != nil {
		appLogger.Error(ctx, err, "Error caching bars")
		log.Fatalf("Error caching bars: %v", err)
	}

	total, err := repo.CountBars(ctx, cfg.Symbol, cfg.Interval)
	if err != nil {
		appLogger.Warn(ctx, "Failed to count cached bars", map[string]interface{}{"error": err.Error()})
	}
	fmt.Printf("Fetched %d bars, cache now holds %d for %s %s\n", len(bars), total, cfg.Symbol, cfg.Interval)

	// 6. Optional CSV export
	if *csvFlag != "" {
		if err := utils.WriteBarsToCSV(bars, *csvFlag); err != nil {
			appLogger.Error(ctx, err, "Error writing CSV")
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *csvFlag)
	}
}
