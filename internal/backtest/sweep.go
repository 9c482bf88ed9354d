package backtest

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"quantsim/internal/domain"
	"quantsim/internal/ports"
)

// SweepResult pairs a strategy with its backtest outcome.
type SweepResult struct {
	Strategy string
	Result   *Result
}

// Sweep runs several strategies over the same bar series as independent
// parallel backtests. Each run owns its own ledger and equity curve, so no
// locking is needed beyond collecting the results.
type Sweep struct {
	cfg           EngineConfig
	logger        ports.Logger
	maxConcurrent int
}

// NewSweep creates a sweep runner. maxConcurrent bounds the number of
// simultaneous runs; zero or negative means one per strategy.
func NewSweep(cfg EngineConfig, logger ports.Logger, maxConcurrent int) *Sweep {
	return &Sweep{cfg: cfg, logger: logger, maxConcurrent: maxConcurrent}
}

// Run backtests every strategy against bars and returns the results sorted
// by total PnL descending. The first failing run cancels the rest; a
// cancelled sweep discards all partial state.
func (s *Sweep) Run(ctx context.Context, strategies []ports.Strategy, bars []*domain.Bar) ([]SweepResult, error) {
	group, groupCtx := errgroup.WithContext(ctx)
	if s.maxConcurrent > 0 {
		group.SetLimit(s.maxConcurrent)
	}

	results := make([]SweepResult, len(strategies))
	var mu sync.Mutex

	for i, strat := range strategies {
		i, strat := i, strat
		group.Go(func() error {
			engine, err := NewEngine(s.cfg, strat, s.logger)
			if err != nil {
				return err
			}
			result, err := engine.Run(groupCtx, bars)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = SweepResult{Strategy: strat.Name(), Result: result}
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.TotalPnL > results[j].Result.TotalPnL
	})
	return results, nil
}
