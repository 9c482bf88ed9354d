package ports

import (
	"context"
	"time"

	"quantsim/internal/domain"
)

// BacktestRun is the persisted summary of one completed backtest, together
// with its closed trades. It mirrors the result produced by the metrics
// engine but is storage-facing and carries an assigned ID once saved.
type BacktestRun struct {
	ID                 int64
	Symbol             string
	Strategy           string
	Interval           string
	CreatedAt          time.Time
	InitialCapital     float64
	FinalCapital       float64
	TotalPnL           float64
	TotalReturnPercent float64
	SharpeRatio        float64
	MaxDrawdown        float64
	MaxDrawdownPercent float64
	TotalCommission    float64
	TotalTrades        int
	WinningTrades      int
	LosingTrades       int
	WinRate            float64
	ProfitFactor       float64
	Trades             []*domain.Trade
}

// BarRepository defines the interface for the historical bar cache.
type BarRepository interface {
	// SaveBars inserts bars, ignoring duplicates on (symbol, interval, timestamp).
	SaveBars(ctx context.Context, bars []*domain.Bar) error
	// FindBars retrieves bars for a symbol/interval between start and end,
	// ordered by timestamp ascending.
	FindBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)
	// CountBars returns the number of cached bars for a symbol/interval.
	CountBars(ctx context.Context, symbol, interval string) (int, error)
}

// RunRepository defines the interface for storing and retrieving backtest runs.
type RunRepository interface {
	// SaveRun persists a run and its trades, returning the assigned run ID.
	SaveRun(ctx context.Context, run *BacktestRun) (int64, error)
	// FindRuns retrieves the most recent runs for a symbol (all symbols when
	// empty), up to limit, ordered by creation time descending.
	FindRuns(ctx context.Context, symbol string, limit int) ([]*BacktestRun, error)
	// FindTradesByRun retrieves the trades recorded for a run.
	FindTradesByRun(ctx context.Context, runID int64) ([]*domain.Trade, error)
}
