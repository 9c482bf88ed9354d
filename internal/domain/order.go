package domain

import "time"

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderFilled   OrderStatus = "filled"
	OrderRejected OrderStatus = "rejected"
)

// RejectReason indicates why an order was rejected by the ledger.
// Rejections are expected, non-fatal conditions; the bar proceeds.
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectInsufficientFunds RejectReason = "INSUFFICIENT_FUNDS"
	RejectNoPosition        RejectReason = "NO_POSITION"
	RejectPositionOpen      RejectReason = "POSITION_OPEN"
	RejectQuantityMismatch  RejectReason = "QUANTITY_MISMATCH"
)

// Order represents a single market order submitted to the ledger. Orders live
// only for the duration of one backtest run and are never persisted.
type Order struct {
	Symbol       string       // Trading symbol
	Side         OrderSide    // BUY or SELL
	Quantity     float64      // Requested quantity (always positive)
	Timestamp    time.Time    // Time the order was created
	Status       OrderStatus  // pending -> filled | rejected
	FilledPrice  float64      // Execution price after slippage (0 until filled)
	Commission   float64      // Commission charged on the fill (0 until filled)
	RejectReason RejectReason // Set when Status is rejected
}

// NewOrder creates a pending market order.
func NewOrder(symbol string, side OrderSide, quantity float64, ts time.Time) *Order {
	return &Order{
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Timestamp: ts,
		Status:    OrderPending,
	}
}
