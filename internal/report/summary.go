package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"quantsim/internal/backtest"
)

// WriteSummary prints a human-readable run summary to w.
func WriteSummary(w io.Writer, strategy string, result *backtest.Result) {
	fmt.Fprintf(w, "\n=== Backtest Summary: %s ===\n\n", strategy)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "Initial Capital:\t%.2f\n", result.InitialCapital)
	fmt.Fprintf(tw, "Final Capital:\t%.2f\n", result.FinalCapital)
	fmt.Fprintf(tw, "Total PnL:\t%.2f\n", result.TotalPnL)
	fmt.Fprintf(tw, "Total Return:\t%.2f%%\n", result.TotalReturnPercent)
	fmt.Fprintf(tw, "Sharpe Ratio:\t%.4f\n", result.SharpeRatio)
	fmt.Fprintf(tw, "Max Drawdown:\t%.2f (%.2f%%)\n", result.MaxDrawdown, result.MaxDrawdownPercent)
	fmt.Fprintf(tw, "Total Commission:\t%.2f\n", result.TotalCommission)
	fmt.Fprintf(tw, "Total Trades:\t%d\n", result.TotalTrades)
	fmt.Fprintf(tw, "Winning Trades:\t%d\n", result.WinningTrades)
	fmt.Fprintf(tw, "Losing Trades:\t%d\n", result.LosingTrades)
	fmt.Fprintf(tw, "Win Rate:\t%.2f%%\n", result.WinRate*100)
	fmt.Fprintf(tw, "Average Win:\t%.2f\n", result.AverageWin)
	fmt.Fprintf(tw, "Average Loss:\t%.2f\n", result.AverageLoss)
	fmt.Fprintf(tw, "Profit Factor:\t%s\n", formatProfitFactor(result.ProfitFactor))
	tw.Flush()
}

// WriteTradeTable prints the individual trades of a run to w.
func WriteTradeTable(w io.Writer, result *backtest.Result) {
	if len(result.Trades) == 0 {
		fmt.Fprintln(w, "\nNo trades executed.")
		return
	}

	fmt.Fprintln(w, "\n=== Trades ===")
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tEntry\tExit\tQty\tEntryPx\tExitPx\tPnL\tPnL%\tComm\t")
	for i, trade := range result.Trades {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			i+1,
			trade.EntryTime.Format("2006-01-02 15:04"),
			trade.ExitTime.Format("2006-01-02 15:04"),
			trade.Quantity,
			trade.EntryPrice,
			trade.ExitPrice,
			trade.PnL,
			trade.PnLPercent,
			trade.Commission,
		)
	}
	tw.Flush()
}

// WriteComparison prints a one-line-per-strategy comparison table, sorted by
// total PnL descending.
func WriteComparison(w io.Writer, results []backtest.SweepResult) {
	sorted := make([]backtest.SweepResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Result.TotalPnL > sorted[j].Result.TotalPnL
	})

	fmt.Fprintln(w, "\n=== Strategy Comparison ===")
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(tw, "Strategy\tTrades\tWinRate\tPnL\tReturn%\tSharpe\tMaxDD%\tPF\t")
	for _, sr := range sorted {
		r := sr.Result
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%.2f\t%.2f\t%.3f\t%.2f\t%s\t\n",
			sr.Strategy,
			r.TotalTrades,
			r.WinRate*100,
			r.TotalPnL,
			r.TotalReturnPercent,
			r.SharpeRatio,
			r.MaxDrawdownPercent,
			formatProfitFactor(r.ProfitFactor),
		)
	}
	tw.Flush()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}
