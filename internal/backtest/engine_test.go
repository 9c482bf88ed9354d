package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantsim/internal/domain"
)

// stubStrategy returns a fixed signal series regardless of the bars.
type stubStrategy struct {
	name    string
	signals []domain.Signal
	err     error
}

func (s *stubStrategy) Name() string      { return s.name }
func (s *stubStrategy) WarmupPeriod() int { return 0 }
func (s *stubStrategy) GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.signals, nil
}

func barsFromCloses(closes ...float64) []*domain.Bar {
	bars := make([]*domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = &domain.Bar{
			Timestamp: ts(i + 1),
			Symbol:    "ETHUSDT",
			Interval:  "1d",
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func frictionlessConfig() EngineConfig {
	return EngineConfig{
		Symbol:            "ETHUSDT",
		InitialCapital:    10000,
		CapitalAllocation: 1.0,
		Metrics:           DefaultMetricsConfig(),
	}
}

func TestNewEngine(t *testing.T) {
	valid := frictionlessConfig()
	strat := &stubStrategy{name: "stub"}

	tests := []struct {
		name    string
		mutate  func(cfg *EngineConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(cfg *EngineConfig) {}, wantErr: false},
		{name: "zero capital", mutate: func(cfg *EngineConfig) { cfg.InitialCapital = 0 }, wantErr: true},
		{name: "negative commission", mutate: func(cfg *EngineConfig) { cfg.CommissionRate = -0.1 }, wantErr: true},
		{name: "zero allocation", mutate: func(cfg *EngineConfig) { cfg.CapitalAllocation = 0 }, wantErr: true},
		{name: "allocation above one", mutate: func(cfg *EngineConfig) { cfg.CapitalAllocation = 1.5 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewEngine(cfg, strat, &mockLogger{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("nil strategy", func(t *testing.T) {
		_, err := NewEngine(valid, nil, &mockLogger{})
		assert.Error(t, err)
	})
	t.Run("nil logger", func(t *testing.T) {
		_, err := NewEngine(valid, strat, nil)
		assert.Error(t, err)
	})
}

func TestEngineSingleRoundTrip(t *testing.T) {
	// Frictionless all-in run: buy the bar-2 close at 110, sell the bar-4
	// close at 120. One trade, PnL 909.09, final capital 10909.09.
	strat := &stubStrategy{
		name:    "stub",
		signals: []domain.Signal{domain.SignalHold, domain.SignalBuy, domain.SignalHold, domain.SignalSell},
	}
	engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), barsFromCloses(100, 110, 90, 120))
	require.NoError(t, err)

	require.Equal(t, 1, result.TotalTrades)
	trade := result.Trades[0]
	assert.InDelta(t, 10000.0/110.0, trade.Quantity, 1e-9)
	assert.InDelta(t, 110.0, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 120.0, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 909.0909, trade.PnL, 1e-3)

	assert.InDelta(t, 10909.0909, result.FinalCapital, 1e-3)
	assert.InDelta(t, 909.0909, result.TotalPnL, 1e-3)
	assert.Equal(t, 1, result.WinningTrades)
	assert.Len(t, result.EquityCurve, 4)

	// Equity dips with the mark-to-market at bar 3 (close 90).
	assert.InDelta(t, 10000.0, result.EquityCurve[0].Equity, 1e-9)
	assert.InDelta(t, 10000.0, result.EquityCurve[1].Equity, 1e-6)
	assert.InDelta(t, 10000.0/110.0*90.0, result.EquityCurve[2].Equity, 1e-6)
	assert.InDelta(t, 10909.0909, result.EquityCurve[3].Equity, 1e-3)
}

func TestEngineAllHoldSignals(t *testing.T) {
	strat := &stubStrategy{name: "stub", signals: make([]domain.Signal, 5)}
	engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), barsFromCloses(100, 105, 95, 102, 100))
	require.NoError(t, err)

	assert.Zero(t, result.TotalTrades)
	assert.Equal(t, 10000.0, result.FinalCapital)
	assert.Zero(t, result.TotalPnL)
	assert.Zero(t, result.SharpeRatio)
	assert.Len(t, result.EquityCurve, 5)
}

func TestEngineForceCloseAtEnd(t *testing.T) {
	// Buy on the first bar and never sell; the run must still end flat.
	strat := &stubStrategy{
		name:    "stub",
		signals: []domain.Signal{domain.SignalBuy, domain.SignalHold, domain.SignalHold},
	}
	engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), barsFromCloses(100, 110, 95))
	require.NoError(t, err)

	require.Equal(t, 1, result.TotalTrades)
	assert.InDelta(t, 95.0, result.Trades[0].ExitPrice, 1e-9)
	assert.InDelta(t, -500.0, result.Trades[0].PnL, 1e-6)
	assert.InDelta(t, 9500.0, result.FinalCapital, 1e-6)
}

func TestEngineRedundantSignalsAreNoOps(t *testing.T) {
	// Sell while flat and buy while long are ignored, not errors.
	strat := &stubStrategy{
		name: "stub",
		signals: []domain.Signal{
			domain.SignalSell, // flat: no-op
			domain.SignalBuy,
			domain.SignalBuy, // long: no-op
			domain.SignalSell,
		},
	}
	engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), barsFromCloses(100, 100, 110, 120))
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalTrades)
	assert.InDelta(t, 12000.0, result.FinalCapital, 1e-6)
}

func TestEnginePartialAllocation(t *testing.T) {
	cfg := frictionlessConfig()
	cfg.CapitalAllocation = 0.5
	strat := &stubStrategy{
		name:    "stub",
		signals: []domain.Signal{domain.SignalBuy, domain.SignalSell},
	}
	engine, err := NewEngine(cfg, strat, &mockLogger{})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), barsFromCloses(100, 120))
	require.NoError(t, err)

	require.Equal(t, 1, result.TotalTrades)
	assert.InDelta(t, 50.0, result.Trades[0].Quantity, 1e-9)
	assert.InDelta(t, 11000.0, result.FinalCapital, 1e-6)
}

func TestEngineEmptySeries(t *testing.T) {
	strat := &stubStrategy{name: "stub", signals: nil}
	engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 10000.0, result.FinalCapital)
	assert.Empty(t, result.EquityCurve)
	assert.Zero(t, result.TotalTrades)
}

func TestEngineInputValidation(t *testing.T) {
	t.Run("invalid bar series", func(t *testing.T) {
		strat := &stubStrategy{name: "stub", signals: make([]domain.Signal, 2)}
		engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
		require.NoError(t, err)

		bars := barsFromCloses(100, 110)
		bars[1].Timestamp = bars[0].Timestamp // not strictly increasing

		_, err = engine.Run(context.Background(), bars)
		assert.ErrorIs(t, err, domain.ErrInvalidSeries)
	})

	t.Run("misaligned signals", func(t *testing.T) {
		strat := &stubStrategy{name: "stub", signals: make([]domain.Signal, 1)}
		engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
		require.NoError(t, err)

		_, err = engine.Run(context.Background(), barsFromCloses(100, 110))
		assert.ErrorIs(t, err, domain.ErrInvalidSignal)
	})

	t.Run("strategy error propagates", func(t *testing.T) {
		wantErr := errors.New("indicator blew up")
		strat := &stubStrategy{name: "stub", err: wantErr}
		engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
		require.NoError(t, err)

		_, err = engine.Run(context.Background(), barsFromCloses(100, 110))
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestEngineContextCancellation(t *testing.T) {
	strat := &stubStrategy{name: "stub", signals: make([]domain.Signal, 3)}
	engine, err := NewEngine(frictionlessConfig(), strat, &mockLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Run(ctx, barsFromCloses(100, 110, 120))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineCommissionPreventsBuy(t *testing.T) {
	// With a commission on top of an all-in allocation the first buy would
	// need more than the available cash and is rejected; the run ends flat
	// with only the rejection having happened.
	cfg := frictionlessConfig()
	cfg.CommissionRate = 0.001
	strat := &stubStrategy{
		name:    "stub",
		signals: []domain.Signal{domain.SignalBuy, domain.SignalHold},
	}
	engine, err := NewEngine(cfg, strat, &mockLogger{})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), barsFromCloses(100, 110))
	require.NoError(t, err)

	assert.Zero(t, result.TotalTrades)
	assert.Equal(t, 10000.0, result.FinalCapital)
}

func TestEngineDefaultCostsExecuteTrades(t *testing.T) {
	// The shipped defaults: 95% allocation leaves enough headroom that buys
	// fill despite slippage and commission inflating the cost.
	cfg := frictionlessConfig()
	cfg.CommissionRate = 0.001
	cfg.SlippageRate = 0.0005
	cfg.CapitalAllocation = 0.95
	strat := &stubStrategy{
		name:    "stub",
		signals: []domain.Signal{domain.SignalBuy, domain.SignalSell},
	}
	engine, err := NewEngine(cfg, strat, &mockLogger{})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), barsFromCloses(100, 120))
	require.NoError(t, err)

	require.Equal(t, 1, result.TotalTrades)
	trade := result.Trades[0]
	assert.InDelta(t, 95.0, trade.Quantity, 1e-9)
	assert.InDelta(t, 100.05, trade.EntryPrice, 1e-9) // 100 plus slippage
	assert.InDelta(t, 119.94, trade.ExitPrice, 1e-9)  // 120 minus slippage
	assert.InDelta(t, 11868.65095, result.FinalCapital, 1e-5)
}
