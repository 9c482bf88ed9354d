package strategies

import (
	"context"
	"fmt"
	"math"

	"quantsim/internal/domain"
	"quantsim/internal/strategy/indicators"
)

// RSIConfig holds configuration for the RSI strategy.
type RSIConfig struct {
	Period     int     // Lookback period (default 14)
	Oversold   float64 // Buy below this level (default 30)
	Overbought float64 // Sell above this level (default 70)
}

// RSI is a mean-reversion strategy: buy while the RSI is below the oversold
// level, sell while it is above the overbought level.
type RSI struct {
	cfg RSIConfig
}

// NewRSI validates the configuration and creates the strategy.
func NewRSI(cfg RSIConfig) (*RSI, error) {
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("RSI period must be positive, got %d", cfg.Period)
	}
	if cfg.Oversold < 0 || cfg.Overbought > 100 || cfg.Oversold >= cfg.Overbought {
		return nil, fmt.Errorf("invalid RSI thresholds: oversold %.1f, overbought %.1f", cfg.Oversold, cfg.Overbought)
	}
	return &RSI{cfg: cfg}, nil
}

// Name returns the name of the strategy.
func (s *RSI) Name() string {
	return fmt.Sprintf("rsi_%d", s.cfg.Period)
}

// WarmupPeriod returns the number of leading bars without a signal.
func (s *RSI) WarmupPeriod() int {
	return s.cfg.Period + 1
}

// GenerateSignals computes one signal per bar from the RSI series.
func (s *RSI) GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error) {
	rsi := indicators.RSI(domain.Closes(bars), s.cfg.Period)
	signals := make([]domain.Signal, len(bars))
	for i, value := range rsi {
		if math.IsNaN(value) {
			continue
		}
		switch {
		case value < s.cfg.Oversold:
			signals[i] = domain.SignalBuy
		case value > s.cfg.Overbought:
			signals[i] = domain.SignalSell
		}
	}
	return signals, nil
}
