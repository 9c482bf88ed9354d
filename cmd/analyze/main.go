package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"

	"quantsim/config"
	"quantsim/internal/adapters/logger"
	"quantsim/internal/adapters/sqlite"
	"quantsim/internal/ports"
)

func main() {
	symbolFlag := flag.String("symbol", "", "filter runs by symbol (default: all)")
	limitFlag := flag.Int("limit", 20, "maximum number of runs to show")
	runFlag := flag.Int64("run", 0, "show the trades of one run by ID")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open database: %v", err)
	}
	defer repo.Close()

	if *runFlag > 0 {
		printTrades(ctx, repo, *runFlag)
		return
	}

	runs, err := repo.FindRuns(ctx, *symbolFlag, *limitFlag)
	if err != nil {
		log.Fatalf("FATAL: Failed to load runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No saved runs found. Run backtest or compare first.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "ID\tCreated\tSymbol\tStrategy\tTrades\tWinRate\tPnL\tReturn%\tSharpe\tMaxDD%\tPF\t")
	for _, run := range runs {
		pf := fmt.Sprintf("%.2f", run.ProfitFactor)
		if math.IsInf(run.ProfitFactor, 1) {
			pf = "inf"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.1f%%\t%.2f\t%.2f\t%.3f\t%.2f\t%s\t\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.Symbol,
			run.Strategy,
			run.TotalTrades,
			run.WinRate*100,
			run.TotalPnL,
			run.TotalReturnPercent,
			run.SharpeRatio,
			run.MaxDrawdownPercent,
			pf,
		)
	}
	w.Flush()
}

func printTrades(ctx context.Context, repo *sqlite.Repository, runID int64) {
	trades, err := repo.FindTradesByRun(ctx, runID)
	if errors.Is(err, ports.ErrNotFound) {
		log.Fatalf("FATAL: No run with ID %d. Use analyze without -run to list runs.", runID)
	}
	if err != nil {
		log.Fatalf("FATAL: Failed to load trades for run %d: %v", runID, err)
	}
	if len(trades) == 0 {
		fmt.Printf("Run %d has no recorded trades.\n", runID)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tEntry\tExit\tQty\tEntryPx\tExitPx\tPnL\tPnL%\tComm\t")
	for i, t := range trades {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			i+1,
			t.EntryTime.Format("2006-01-02 15:04"),
			t.ExitTime.Format("2006-01-02 15:04"),
			t.Quantity,
			t.EntryPrice,
			t.ExitPrice,
			t.PnL,
			t.PnLPercent,
			t.Commission,
		)
	}
	w.Flush()
}
