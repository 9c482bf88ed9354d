package domain

import "time"

// PositionStatus represents the status of a position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "open"
	StatusClosed PositionStatus = "closed"
)

// Position represents an open long position owned by the ledger. At most one
// position per symbol exists at a time; there is no stacking or hedging.
type Position struct {
	Symbol       string         // Trading symbol
	Quantity     float64        // Size of the position (positive while open)
	EntryPrice   float64        // Execution price at entry (slippage applied)
	EntryTime    time.Time      // Timestamp of the entry fill
	CurrentPrice float64        // Latest mark-to-market price, refreshed every bar
	ExitPrice    float64        // Execution price at exit (0 while open)
	ExitTime     time.Time      // Timestamp of the exit fill (zero value while open)
	Status       PositionStatus // open or closed
}

// IsOpen checks if the position status is open.
func (p *Position) IsOpen() bool {
	return p.Status == StatusOpen
}

// MarketValue returns the current mark-to-market value of the position.
func (p *Position) MarketValue() float64 {
	price := p.CurrentPrice
	if price == 0 {
		price = p.EntryPrice
	}
	return p.Quantity * price
}

// UnrealizedPnL returns the profit or loss if the position were closed at the
// current market price, ignoring exit costs.
func (p *Position) UnrealizedPnL() float64 {
	if p.CurrentPrice == 0 {
		return 0
	}
	return (p.CurrentPrice - p.EntryPrice) * p.Quantity
}
