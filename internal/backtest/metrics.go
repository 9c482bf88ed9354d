package backtest

import (
	"math"

	"quantsim/internal/domain"
)

// DefaultPeriodsPerYear is the annualization factor for daily bars.
const DefaultPeriodsPerYear = 252

// MetricsConfig makes the Sharpe annualization conventions explicit instead
// of hardcoding the daily-bar assumption.
type MetricsConfig struct {
	PeriodsPerYear int  // Snapshots per year for annualization (252 for daily bars)
	SampleStdDev   bool // Sample (n-1) instead of population (n) standard deviation
}

// DefaultMetricsConfig returns the daily-bar convention with sample stddev.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{PeriodsPerYear: DefaultPeriodsPerYear, SampleStdDev: true}
}

// Result is the terminal aggregate of one backtest run. It is produced
// exactly once per run and read-only thereafter.
type Result struct {
	InitialCapital     float64
	FinalCapital       float64
	TotalPnL           float64
	TotalReturnPercent float64
	SharpeRatio        float64
	MaxDrawdown        float64
	MaxDrawdownPercent float64
	TotalCommission    float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AverageWin    float64
	AverageLoss   float64
	ProfitFactor  float64

	EquityCurve []EquityPoint
	Trades      []*domain.Trade
}

// ComputeMetrics derives the full statistics set from the closed trades and
// the equity curve. Degenerate inputs (no trades, flat equity, no losers)
// produce the defined sentinel values rather than NaN or a panic.
func ComputeMetrics(trades []*domain.Trade, equityCurve []EquityPoint, initialCapital, totalCommission float64, cfg MetricsConfig) *Result {
	if cfg.PeriodsPerYear <= 0 {
		cfg.PeriodsPerYear = DefaultPeriodsPerYear
	}

	result := &Result{
		InitialCapital:  initialCapital,
		FinalCapital:    initialCapital,
		TotalCommission: totalCommission,
		EquityCurve:     equityCurve,
		Trades:          trades,
	}

	if len(equityCurve) > 0 {
		result.FinalCapital = equityCurve[len(equityCurve)-1].Equity
	}
	result.TotalPnL = result.FinalCapital - initialCapital
	if initialCapital != 0 {
		result.TotalReturnPercent = (result.TotalPnL / initialCapital) * 100
	}

	result.SharpeRatio = sharpeRatio(equityCurve, cfg)
	result.MaxDrawdown, result.MaxDrawdownPercent = maxDrawdown(equityCurve)

	var sumWins, sumLosses float64
	for _, trade := range trades {
		result.TotalTrades++
		if trade.IsWinner() {
			result.WinningTrades++
			sumWins += trade.PnL
		} else {
			result.LosingTrades++
			sumLosses += trade.PnL
		}
	}
	if result.WinningTrades > 0 {
		result.AverageWin = sumWins / float64(result.WinningTrades)
	}
	if result.LosingTrades > 0 {
		result.AverageLoss = sumLosses / float64(result.LosingTrades)
	}
	if result.TotalTrades > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades)
		if result.LosingTrades == 0 || sumLosses == 0 {
			// No losing PnL to divide by: by convention infinite when
			// anything was won at all.
			if result.WinningTrades > 0 {
				result.ProfitFactor = math.Inf(1)
			}
		} else {
			result.ProfitFactor = sumWins / math.Abs(sumLosses)
		}
	}

	return result
}

// sharpeRatio computes the annualized Sharpe ratio from per-snapshot simple
// returns. A zero-variance or too-short curve yields 0 by definition.
func sharpeRatio(equityCurve []EquityPoint, cfg MetricsConfig) float64 {
	if len(equityCurve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1].Equity
		if prev == 0 {
			return 0
		}
		returns = append(returns, equityCurve[i].Equity/prev-1)
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	n := float64(len(returns))
	if cfg.SampleStdDev {
		if len(returns) < 2 {
			return 0
		}
		variance /= n - 1
	} else {
		variance /= n
	}

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(float64(cfg.PeriodsPerYear))
}

// maxDrawdown tracks the running equity peak in a single forward pass. The
// percent form divides by the peak at that point, not by initial capital.
func maxDrawdown(equityCurve []EquityPoint) (abs float64, percent float64) {
	if len(equityCurve) == 0 {
		return 0, 0
	}

	peak := equityCurve[0].Equity
	for _, point := range equityCurve {
		if point.Equity > peak {
			peak = point.Equity
		}
		drawdown := peak - point.Equity
		if drawdown > abs {
			abs = drawdown
		}
		if peak > 0 {
			if ddPercent := (drawdown / peak) * 100; ddPercent > percent {
				percent = ddPercent
			}
		}
	}
	return abs, percent
}
