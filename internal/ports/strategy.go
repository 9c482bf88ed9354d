package ports

import (
	"context"

	"quantsim/internal/domain"
)

// Strategy defines the interface for signal-generating trading strategies.
// A strategy is a pure function of the historical series: signals are computed
// once over the whole series before the simulation loop starts, aligned 1:1
// with the input bars. Bars inside the warmup window must carry SignalHold.
type Strategy interface {
	// GenerateSignals computes one signal per input bar.
	GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error)

	// WarmupPeriod returns the number of leading bars the strategy needs
	// before it can produce a non-hold signal.
	WarmupPeriod() int

	// Name returns the name of the strategy.
	Name() string
}
