package strategies

import (
	"context"
	"fmt"

	"github.com/markcheno/go-talib"

	"quantsim/internal/domain"
)

// BollingerConfig holds configuration for the Bollinger Bands strategy.
type BollingerConfig struct {
	Period int     // Middle-band SMA period (default 20)
	NumStd float64 // Band width in standard deviations (default 2.0)
}

// Bollinger is a mean-reversion strategy: buy when the close drops below the
// lower band, sell when it rises above the upper band.
type Bollinger struct {
	cfg BollingerConfig
}

// NewBollinger validates the configuration and creates the strategy.
func NewBollinger(cfg BollingerConfig) (*Bollinger, error) {
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("Bollinger period must be positive, got %d", cfg.Period)
	}
	if cfg.NumStd <= 0 {
		return nil, fmt.Errorf("Bollinger band width must be positive, got %.2f", cfg.NumStd)
	}
	return &Bollinger{cfg: cfg}, nil
}

// Name returns the name of the strategy.
func (s *Bollinger) Name() string {
	return fmt.Sprintf("bollinger_%d", s.cfg.Period)
}

// WarmupPeriod returns the number of leading bars without a signal.
func (s *Bollinger) WarmupPeriod() int {
	return s.cfg.Period
}

// GenerateSignals computes one signal per bar from the band breaches.
func (s *Bollinger) GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error) {
	signals := make([]domain.Signal, len(bars))
	if len(bars) < s.cfg.Period {
		return signals, nil
	}

	closes := domain.Closes(bars)
	upper, _, lower := talib.BBands(closes, s.cfg.Period, s.cfg.NumStd, s.cfg.NumStd, talib.SMA)

	for i := s.cfg.Period; i < len(bars); i++ {
		switch {
		case closes[i] < lower[i]:
			signals[i] = domain.SignalBuy
		case closes[i] > upper[i]:
			signals[i] = domain.SignalSell
		}
	}
	return signals, nil
}
