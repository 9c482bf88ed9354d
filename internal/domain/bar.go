package domain

import (
	"fmt"
	"time"
)

// Bar represents a single OHLCV sample for a fixed time interval.
// Bars are owned by the input series and are never mutated by the engine.
type Bar struct {
	Timestamp time.Time // Start time of the interval
	Symbol    string    // Trading symbol
	Interval  string    // Bar interval (e.g., "1h", "1d")
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Traded volume
}

// ValidateBars checks the structural invariants of a bar series: strictly
// increasing timestamps, positive prices, high >= low, close within [low, high]
// and non-negative volume. A violation is a fatal input error; the caller is
// expected to abort the run.
func ValidateBars(bars []*Bar) error {
	for i, b := range bars {
		if b == nil {
			return fmt.Errorf("bar %d: %w: nil bar", i, ErrInvalidSeries)
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d (%s): %w: non-positive price", i, b.Timestamp.Format(time.RFC3339), ErrInvalidSeries)
		}
		if b.High < b.Low {
			return fmt.Errorf("bar %d (%s): %w: high %.8f below low %.8f", i, b.Timestamp.Format(time.RFC3339), ErrInvalidSeries, b.High, b.Low)
		}
		if b.Close < b.Low || b.Close > b.High {
			return fmt.Errorf("bar %d (%s): %w: close %.8f outside [low, high]", i, b.Timestamp.Format(time.RFC3339), ErrInvalidSeries, b.Close)
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): %w: negative volume", i, b.Timestamp.Format(time.RFC3339), ErrInvalidSeries)
		}
		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("bar %d (%s): %w: timestamp not after previous bar", i, b.Timestamp.Format(time.RFC3339), ErrInvalidSeries)
		}
	}
	return nil
}

// Closes extracts the close price series from a bar slice.
func Closes(bars []*Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
