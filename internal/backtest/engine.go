package backtest

import (
	"context"
	"fmt"

	"quantsim/internal/domain"
	"quantsim/internal/ports"
)

// EngineConfig holds the configuration surface of one backtest run. The
// engine never reads the environment; outer layers populate this struct.
type EngineConfig struct {
	Symbol            string
	InitialCapital    float64
	CommissionRate    float64
	SlippageRate      float64
	CapitalAllocation float64 // Fraction of free cash committed per buy signal
	Metrics           MetricsConfig
}

// Engine drives a single backtest: it walks the bar series in timestamp
// order, turns signal transitions into orders, feeds them to the ledger and
// hands the outcome to the metrics engine. Engines are single-use; parallel
// sweeps run one engine per strategy (see Sweep).
type Engine struct {
	cfg      EngineConfig
	strategy ports.Strategy
	logger   ports.Logger
}

// NewEngine validates the configuration and creates an engine.
func NewEngine(cfg EngineConfig, strategy ports.Strategy, logger ports.Logger) (*Engine, error) {
	if strategy == nil {
		return nil, fmt.Errorf("strategy is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %.2f", cfg.InitialCapital)
	}
	if cfg.CommissionRate < 0 || cfg.SlippageRate < 0 {
		return nil, fmt.Errorf("commission and slippage rates cannot be negative")
	}
	if cfg.CapitalAllocation <= 0 || cfg.CapitalAllocation > 1 {
		return nil, fmt.Errorf("capital allocation must be in (0, 1], got %.4f", cfg.CapitalAllocation)
	}
	if cfg.Symbol == "" {
		cfg.Symbol = "ASSET"
	}
	return &Engine{cfg: cfg, strategy: strategy, logger: logger}, nil
}

// Run executes the backtest over the given bar series and returns the final
// result. The input series must already satisfy the bar invariants; a
// violation aborts the run with an error and no partial result. Cancelling
// the context aborts the run the same way.
func (e *Engine) Run(ctx context.Context, bars []*domain.Bar) (*Result, error) {
	if err := domain.ValidateBars(bars); err != nil {
		return nil, err
	}

	ledger, err := NewLedger(e.cfg.InitialCapital, CostModel{
		SlippageRate:   e.cfg.SlippageRate,
		CommissionRate: e.cfg.CommissionRate,
	}, e.logger)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		e.logger.Warn(ctx, "Empty bar series, producing degenerate result", map[string]interface{}{
			"strategy": e.strategy.Name(),
		})
		return ComputeMetrics(nil, nil, e.cfg.InitialCapital, 0, e.cfg.Metrics), nil
	}

	// Signals are precomputed once over the whole series, not per bar.
	signals, err := e.strategy.GenerateSignals(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("strategy %s failed to generate signals: %w", e.strategy.Name(), err)
	}
	if err := domain.ValidateSignals(signals, len(bars)); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", e.strategy.Name(), err)
	}

	e.logger.Info(ctx, "Starting backtest", map[string]interface{}{
		"strategy":       e.strategy.Name(),
		"symbol":         e.cfg.Symbol,
		"bars":           len(bars),
		"initialCapital": e.cfg.InitialCapital,
	})

	for i, bar := range bars {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("backtest aborted: %w", ctx.Err())
		default:
		}

		switch {
		case signals[i] == domain.SignalBuy && ledger.Position() == nil:
			quantity := ledger.Cash() * e.cfg.CapitalAllocation / bar.Close
			order := domain.NewOrder(e.cfg.Symbol, domain.Buy, quantity, bar.Timestamp)
			if err := ledger.Execute(ctx, order, bar.Close, bar.Timestamp); err != nil {
				return nil, err
			}
		case signals[i] == domain.SignalSell && ledger.Position() != nil:
			order := domain.NewOrder(e.cfg.Symbol, domain.Sell, ledger.Position().Quantity, bar.Timestamp)
			if err := ledger.Execute(ctx, order, bar.Close, bar.Timestamp); err != nil {
				return nil, err
			}
		}
		// Flat signals and signal/state mismatches are no-ops beyond the
		// mark-to-market below.

		ledger.MarkToMarket(e.cfg.Symbol, bar.Close)
		ledger.RecordEquity(bar.Timestamp)
	}

	// Liquidate at the last close so every run ends flat.
	last := bars[len(bars)-1]
	if err := ledger.ForceClose(ctx, last.Close, last.Timestamp); err != nil {
		return nil, err
	}

	result := ComputeMetrics(ledger.Trades(), ledger.EquityCurve(), e.cfg.InitialCapital, ledger.TotalCommission(), e.cfg.Metrics)

	e.logger.Info(ctx, "Backtest completed", map[string]interface{}{
		"strategy":      e.strategy.Name(),
		"trades":        result.TotalTrades,
		"totalPnL":      result.TotalPnL,
		"returnPercent": result.TotalReturnPercent,
	})
	return result, nil
}
