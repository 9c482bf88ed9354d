package strategies

import (
	"context"
	"fmt"
	"math"

	"quantsim/internal/domain"
	"quantsim/internal/strategy/indicators"
)

// MAType selects the moving average flavour for the crossover strategy.
type MAType string

const (
	SimpleMA      MAType = "sma"
	ExponentialMA MAType = "ema"
)

// MACrossoverConfig holds configuration for the moving average crossover
// strategy.
type MACrossoverConfig struct {
	FastPeriod int    // Fast MA period (default 50)
	SlowPeriod int    // Slow MA period (default 200)
	Type       MAType // sma or ema (default sma)
}

// MACrossover implements the golden/death cross strategy: buy when the fast
// moving average crosses above the slow one, sell when it crosses below.
type MACrossover struct {
	cfg MACrossoverConfig
}

// NewMACrossover validates the configuration and creates the strategy.
func NewMACrossover(cfg MACrossoverConfig) (*MACrossover, error) {
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= 0 {
		return nil, fmt.Errorf("MA periods must be positive, got fast %d slow %d", cfg.FastPeriod, cfg.SlowPeriod)
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, fmt.Errorf("fast period %d must be less than slow period %d", cfg.FastPeriod, cfg.SlowPeriod)
	}
	if cfg.Type == "" {
		cfg.Type = SimpleMA
	}
	if cfg.Type != SimpleMA && cfg.Type != ExponentialMA {
		return nil, fmt.Errorf("unsupported moving average type: %s", cfg.Type)
	}
	return &MACrossover{cfg: cfg}, nil
}

// Name returns the name of the strategy.
func (s *MACrossover) Name() string {
	return fmt.Sprintf("%s_cross_%d_%d", s.cfg.Type, s.cfg.FastPeriod, s.cfg.SlowPeriod)
}

// WarmupPeriod returns the number of leading bars without a signal.
func (s *MACrossover) WarmupPeriod() int {
	return s.cfg.SlowPeriod + 1
}

// GenerateSignals emits a buy on each golden cross and a sell on each death
// cross; every other bar holds.
func (s *MACrossover) GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error) {
	closes := domain.Closes(bars)

	var fast, slow []float64
	if s.cfg.Type == ExponentialMA {
		fast = indicators.EMA(closes, s.cfg.FastPeriod)
		slow = indicators.EMA(closes, s.cfg.SlowPeriod)
	} else {
		fast = indicators.SMA(closes, s.cfg.FastPeriod)
		slow = indicators.SMA(closes, s.cfg.SlowPeriod)
	}

	signals := make([]domain.Signal, len(bars))
	for i := 1; i < len(bars); i++ {
		if math.IsNaN(slow[i]) || math.IsNaN(slow[i-1]) {
			continue
		}
		switch {
		case fast[i] > slow[i] && fast[i-1] <= slow[i-1]:
			signals[i] = domain.SignalBuy
		case fast[i] < slow[i] && fast[i-1] >= slow[i-1]:
			signals[i] = domain.SignalSell
		}
	}
	return signals, nil
}
