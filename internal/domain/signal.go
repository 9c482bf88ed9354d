package domain

import "fmt"

// Signal is a per-bar directional opinion produced by a strategy.
type Signal int

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

// String returns a human-readable form of the signal.
func (s Signal) String() string {
	switch s {
	case SignalSell:
		return "SELL"
	case SignalHold:
		return "HOLD"
	case SignalBuy:
		return "BUY"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// ValidateSignals checks that the signal series is aligned 1:1 with the bar
// series and that every value is in {-1, 0, 1}. Violations are fatal.
func ValidateSignals(signals []Signal, numBars int) error {
	if len(signals) != numBars {
		return fmt.Errorf("%w: got %d signals for %d bars", ErrInvalidSignal, len(signals), numBars)
	}
	for i, s := range signals {
		if s < SignalSell || s > SignalBuy {
			return fmt.Errorf("%w: value %d at index %d", ErrInvalidSignal, int(s), i)
		}
	}
	return nil
}
