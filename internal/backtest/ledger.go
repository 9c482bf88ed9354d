package backtest

import (
	"context"
	"fmt"
	"time"

	"quantsim/internal/domain"
	"quantsim/internal/ports"
)

// cashTolerance absorbs float rounding when an order is sized from the same
// cash balance it is paid out of (all-in allocations would otherwise be
// rejected by a few units in the last decimal place).
const cashTolerance = 1e-9

// EquityPoint is one snapshot of total account value on the equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

// Ledger owns the cash balance, the open position and the trade history of a
// single backtest run. It executes orders against the current market price,
// enforcing the funds and single-position constraints, and records one equity
// snapshot per bar. A ledger is not safe for concurrent use; each run owns
// its own instance.
type Ledger struct {
	initialCash     float64
	cash            float64
	costs           CostModel
	position        *domain.Position
	entryCommission float64
	trades          []*domain.Trade
	equityCurve     []EquityPoint
	totalCommission float64
	logger          ports.Logger
}

// NewLedger creates a ledger with the given starting cash and cost model.
func NewLedger(initialCash float64, costs CostModel, logger ports.Logger) (*Ledger, error) {
	if initialCash <= 0 {
		return nil, fmt.Errorf("initial cash must be positive, got %.2f", initialCash)
	}
	if costs.SlippageRate < 0 || costs.CommissionRate < 0 {
		return nil, fmt.Errorf("slippage and commission rates cannot be negative")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for ledger")
	}
	return &Ledger{
		initialCash: initialCash,
		cash:        initialCash,
		costs:       costs,
		logger:      logger,
	}, nil
}

// Cash returns the current free cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// Position returns the open position, or nil when flat.
func (l *Ledger) Position() *domain.Position { return l.position }

// Trades returns the closed trades in close order.
func (l *Ledger) Trades() []*domain.Trade { return l.trades }

// TotalCommission returns the commission paid across all fills.
func (l *Ledger) TotalCommission() float64 { return l.totalCommission }

// EquityCurve returns the recorded equity snapshots in call order.
func (l *Ledger) EquityCurve() []EquityPoint { return l.equityCurve }

// Equity returns cash plus the mark-to-market value of any open position.
func (l *Ledger) Equity() float64 {
	if l.position == nil {
		return l.cash
	}
	return l.cash + l.position.MarketValue()
}

// Execute fills or rejects a pending order at the given market price.
// Insufficient funds, a duplicate entry, a sell with no open position and a
// sell whose quantity does not match the open position are expected
// conditions: the order status is set to rejected and a nil error is
// returned. A non-positive quantity or price is a contract violation and
// returns an error.
func (l *Ledger) Execute(ctx context.Context, order *domain.Order, marketPrice float64, ts time.Time) error {
	if order == nil {
		return fmt.Errorf("%w: nil order", domain.ErrInvalidOrder)
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("%w: non-positive quantity %.8f", domain.ErrInvalidOrder, order.Quantity)
	}
	if marketPrice <= 0 {
		return fmt.Errorf("%w: non-positive market price %.8f", domain.ErrInvalidOrder, marketPrice)
	}

	execPrice := l.costs.ExecutionPrice(order.Side, marketPrice)
	commission := l.costs.Commission(order.Quantity, execPrice)

	switch order.Side {
	case domain.Buy:
		l.executeBuy(ctx, order, execPrice, commission, ts)
	case domain.Sell:
		l.executeSell(ctx, order, execPrice, commission, ts)
	default:
		return fmt.Errorf("%w: unknown side %q", domain.ErrInvalidOrder, order.Side)
	}
	return nil
}

func (l *Ledger) executeBuy(ctx context.Context, order *domain.Order, execPrice, commission float64, ts time.Time) {
	if l.position != nil {
		order.Status = domain.OrderRejected
		order.RejectReason = domain.RejectPositionOpen
		l.logger.Debug(ctx, "Buy rejected: position already open", map[string]interface{}{
			"symbol": order.Symbol,
		})
		return
	}

	cost := order.Quantity*execPrice + commission
	if cost > l.cash+cashTolerance {
		order.Status = domain.OrderRejected
		order.RejectReason = domain.RejectInsufficientFunds
		l.logger.Warn(ctx, "Buy rejected: insufficient funds", map[string]interface{}{
			"symbol": order.Symbol,
			"need":   cost,
			"have":   l.cash,
		})
		return
	}

	l.cash -= cost
	if l.cash < 0 {
		l.cash = 0 // only reachable within cashTolerance
	}
	l.totalCommission += commission
	l.entryCommission = commission
	l.position = &domain.Position{
		Symbol:       order.Symbol,
		Quantity:     order.Quantity,
		EntryPrice:   execPrice,
		EntryTime:    ts,
		CurrentPrice: execPrice,
		Status:       domain.StatusOpen,
	}

	order.Status = domain.OrderFilled
	order.FilledPrice = execPrice
	order.Commission = commission

	l.logger.Info(ctx, "BUY filled", map[string]interface{}{
		"symbol":     order.Symbol,
		"quantity":   order.Quantity,
		"price":      execPrice,
		"commission": commission,
		"cash":       l.cash,
	})
}

func (l *Ledger) executeSell(ctx context.Context, order *domain.Order, execPrice, commission float64, ts time.Time) {
	if l.position == nil {
		order.Status = domain.OrderRejected
		order.RejectReason = domain.RejectNoPosition
		l.logger.Warn(ctx, "Sell rejected: no position to close", map[string]interface{}{
			"symbol":    order.Symbol,
			"requested": order.Quantity,
		})
		return
	}

	// Positions close whole: a partial sell would credit cash for part of
	// the position while the trade books all of it, breaking cash
	// conservation.
	if order.Quantity != l.position.Quantity {
		order.Status = domain.OrderRejected
		order.RejectReason = domain.RejectQuantityMismatch
		l.logger.Warn(ctx, "Sell rejected: quantity does not match open position", map[string]interface{}{
			"symbol":    order.Symbol,
			"requested": order.Quantity,
			"held":      l.position.Quantity,
		})
		return
	}

	proceeds := order.Quantity*execPrice - commission
	l.cash += proceeds
	l.totalCommission += commission

	l.closePosition(ctx, execPrice, commission, ts)

	order.Status = domain.OrderFilled
	order.FilledPrice = execPrice
	order.Commission = commission

	l.logger.Info(ctx, "SELL filled", map[string]interface{}{
		"symbol":     order.Symbol,
		"quantity":   order.Quantity,
		"price":      execPrice,
		"commission": commission,
		"cash":       l.cash,
	})
}

// closePosition converts the open position into an immutable Trade. Realized
// PnL is proceeds minus cost basis minus the commission of both legs.
func (l *Ledger) closePosition(ctx context.Context, exitPrice, exitCommission float64, ts time.Time) {
	pos := l.position
	pos.ExitPrice = exitPrice
	pos.ExitTime = ts
	pos.CurrentPrice = exitPrice
	pos.Status = domain.StatusClosed

	costBasis := pos.EntryPrice * pos.Quantity
	totalCommission := l.entryCommission + exitCommission
	pnl := (exitPrice-pos.EntryPrice)*pos.Quantity - totalCommission
	pnlPercent := 0.0
	if costBasis != 0 {
		pnlPercent = (pnl / costBasis) * 100
	}

	trade := &domain.Trade{
		Symbol:     pos.Symbol,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   pos.Quantity,
		PnL:        pnl,
		PnLPercent: pnlPercent,
		Commission: totalCommission,
		EntryTime:  pos.EntryTime,
		ExitTime:   ts,
	}
	l.trades = append(l.trades, trade)
	l.position = nil
	l.entryCommission = 0

	l.logger.Info(ctx, "Position closed", map[string]interface{}{
		"symbol":     trade.Symbol,
		"pnl":        trade.PnL,
		"pnlPercent": trade.PnLPercent,
		"duration":   trade.Duration().String(),
	})
}

// MarkToMarket refreshes the open position's current price. Cash is not
// affected; no-op when flat or for a different symbol.
func (l *Ledger) MarkToMarket(symbol string, price float64) {
	if l.position != nil && l.position.Symbol == symbol {
		l.position.CurrentPrice = price
	}
}

// RecordEquity appends one equity snapshot. Called exactly once per bar so
// the curve stays aligned with the input series.
func (l *Ledger) RecordEquity(ts time.Time) {
	l.equityCurve = append(l.equityCurve, EquityPoint{Timestamp: ts, Equity: l.Equity()})
}

// ForceClose liquidates the open position at the given price so the run ends
// flat. No-op when there is no open position.
func (l *Ledger) ForceClose(ctx context.Context, price float64, ts time.Time) error {
	if l.position == nil {
		return nil
	}
	order := domain.NewOrder(l.position.Symbol, domain.Sell, l.position.Quantity, ts)
	if err := l.Execute(ctx, order, price, ts); err != nil {
		return err
	}
	if order.Status != domain.OrderFilled {
		return fmt.Errorf("force close was rejected: %s", order.RejectReason)
	}
	return nil
}
