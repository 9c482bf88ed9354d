package domain

import "time"

// Trade is the immutable record of a closed position. It is derived from a
// Position at close time and appended to the ledger's trade history.
type Trade struct {
	Symbol     string    // Trading symbol
	EntryPrice float64   // Execution price at entry
	ExitPrice  float64   // Execution price at exit
	Quantity   float64   // Size of the closed position
	PnL        float64   // Realized profit/loss net of both commission legs
	PnLPercent float64   // PnL relative to the entry cost basis, in percent
	Commission float64   // Total commission paid on entry and exit
	EntryTime  time.Time // Timestamp of the entry fill
	ExitTime   time.Time // Timestamp of the exit fill
}

// IsWinner reports whether the trade made money. PnL of exactly zero counts
// as a loss, keeping the win/loss partition total.
func (t *Trade) IsWinner() bool {
	return t.PnL > 0
}

// Duration returns how long the position was held.
func (t *Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
