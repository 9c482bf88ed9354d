package strategies

import (
	"context"
	"fmt"
	"strings"

	"quantsim/internal/domain"
	"quantsim/internal/ports"
)

// Combined aggregates the votes of several sub-strategies: a bar gets a buy
// (or sell) signal when at least ConsensusThreshold of them agree. Votes are
// independent; there is no weighting.
type Combined struct {
	strategies []ports.Strategy
	threshold  int
}

// NewCombined validates the member list and consensus threshold and creates
// the strategy.
func NewCombined(members []ports.Strategy, threshold int) (*Combined, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("combined strategy needs at least one member")
	}
	if threshold < 1 {
		return nil, fmt.Errorf("consensus threshold must be at least 1, got %d", threshold)
	}
	if threshold > len(members) {
		return nil, fmt.Errorf("consensus threshold %d exceeds member count %d", threshold, len(members))
	}
	return &Combined{strategies: members, threshold: threshold}, nil
}

// Name returns the name of the strategy, listing its members.
func (s *Combined) Name() string {
	names := make([]string, len(s.strategies))
	for i, member := range s.strategies {
		names[i] = member.Name()
	}
	return fmt.Sprintf("combined_%d_of[%s]", s.threshold, strings.Join(names, ","))
}

// WarmupPeriod returns the longest member warmup.
func (s *Combined) WarmupPeriod() int {
	max := 0
	for _, member := range s.strategies {
		if w := member.WarmupPeriod(); w > max {
			max = w
		}
	}
	return max
}

// GenerateSignals counts per-bar buy and sell votes across members and
// applies the consensus threshold.
func (s *Combined) GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error) {
	buyVotes := make([]int, len(bars))
	sellVotes := make([]int, len(bars))

	for _, member := range s.strategies {
		memberSignals, err := member.GenerateSignals(ctx, bars)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", member.Name(), err)
		}
		if err := domain.ValidateSignals(memberSignals, len(bars)); err != nil {
			return nil, fmt.Errorf("member %s: %w", member.Name(), err)
		}
		for i, sig := range memberSignals {
			switch sig {
			case domain.SignalBuy:
				buyVotes[i]++
			case domain.SignalSell:
				sellVotes[i]++
			}
		}
	}

	signals := make([]domain.Signal, len(bars))
	for i := range bars {
		switch {
		case buyVotes[i] >= s.threshold:
			signals[i] = domain.SignalBuy
		case sellVotes[i] >= s.threshold:
			signals[i] = domain.SignalSell
		}
	}
	return signals, nil
}
