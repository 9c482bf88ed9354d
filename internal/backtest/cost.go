package backtest

import "quantsim/internal/domain"

// CostModel computes execution prices and commissions for simulated fills.
// Both rates are fractions fixed for the run; zero values degrade to
// frictionless execution. All methods are pure.
type CostModel struct {
	SlippageRate   float64 // Price degradation fraction applied at fill time
	CommissionRate float64 // Commission fraction of the filled notional
}

// ExecutionPrice returns the slippage-adjusted fill price for a market order:
// inflated for buys, deflated for sells.
func (c CostModel) ExecutionPrice(side domain.OrderSide, price float64) float64 {
	if side == domain.Buy {
		return price * (1 + c.SlippageRate)
	}
	return price * (1 - c.SlippageRate)
}

// Commission returns the commission owed on a fill of quantity at execPrice.
func (c CostModel) Commission(quantity, execPrice float64) float64 {
	return quantity * execPrice * c.CommissionRate
}
