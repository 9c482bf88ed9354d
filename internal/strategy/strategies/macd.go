package strategies

import (
	"context"
	"fmt"

	"github.com/markcheno/go-talib"

	"quantsim/internal/domain"
)

// MACDConfig holds configuration for the MACD strategy.
type MACDConfig struct {
	FastPeriod   int // Fast EMA period (default 12)
	SlowPeriod   int // Slow EMA period (default 26)
	SignalPeriod int // Signal line EMA period (default 9)
}

// MACD trades the histogram zero-cross: buy when MACD crosses above its
// signal line, sell when it crosses below.
type MACD struct {
	cfg MACDConfig
}

// NewMACD validates the configuration and creates the strategy.
func NewMACD(cfg MACDConfig) (*MACD, error) {
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= 0 || cfg.SignalPeriod <= 0 {
		return nil, fmt.Errorf("MACD periods must be positive, got %d/%d/%d", cfg.FastPeriod, cfg.SlowPeriod, cfg.SignalPeriod)
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, fmt.Errorf("fast period %d must be less than slow period %d", cfg.FastPeriod, cfg.SlowPeriod)
	}
	return &MACD{cfg: cfg}, nil
}

// Name returns the name of the strategy.
func (s *MACD) Name() string {
	return fmt.Sprintf("macd_%d_%d_%d", s.cfg.FastPeriod, s.cfg.SlowPeriod, s.cfg.SignalPeriod)
}

// WarmupPeriod returns the number of leading bars without a signal.
func (s *MACD) WarmupPeriod() int {
	return s.cfg.SlowPeriod + s.cfg.SignalPeriod
}

// GenerateSignals computes one signal per bar from the MACD histogram.
func (s *MACD) GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error) {
	signals := make([]domain.Signal, len(bars))
	if len(bars) <= s.WarmupPeriod() {
		return signals, nil
	}

	_, _, hist := talib.Macd(domain.Closes(bars), s.cfg.FastPeriod, s.cfg.SlowPeriod, s.cfg.SignalPeriod)

	for i := s.WarmupPeriod(); i < len(bars); i++ {
		switch {
		case hist[i] > 0 && hist[i-1] <= 0:
			signals[i] = domain.SignalBuy
		case hist[i] < 0 && hist[i-1] >= 0:
			signals[i] = domain.SignalSell
		}
	}
	return signals, nil
}
