package report

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quantsim/internal/backtest"
	"quantsim/internal/domain"
)

func sampleResult() *backtest.Result {
	entry := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return &backtest.Result{
		InitialCapital:     10000,
		FinalCapital:       10909.09,
		TotalPnL:           909.09,
		TotalReturnPercent: 9.09,
		SharpeRatio:        1.2345,
		MaxDrawdown:        1818.18,
		MaxDrawdownPercent: 18.18,
		TotalTrades:        1,
		WinningTrades:      1,
		WinRate:            1.0,
		AverageWin:         909.09,
		ProfitFactor:       math.Inf(1),
		Trades: []*domain.Trade{
			{
				Symbol:     "ETHUSDT",
				EntryPrice: 110,
				ExitPrice:  120,
				Quantity:   90.909,
				PnL:        909.09,
				PnLPercent: 9.09,
				EntryTime:  entry,
				ExitTime:   entry.Add(48 * time.Hour),
			},
		},
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, "rsi_14", sampleResult())
	out := buf.String()

	assert.Contains(t, out, "Backtest Summary: rsi_14")
	assert.Contains(t, out, "10909.09")
	assert.Contains(t, out, "1.2345")
	assert.Contains(t, out, "18.18%")
	assert.Contains(t, out, "Profit Factor:")
	assert.Contains(t, out, "inf")
}

func TestWriteTradeTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTradeTable(&buf, sampleResult())
	out := buf.String()

	assert.Contains(t, out, "2024-01-02")
	assert.Contains(t, out, "909.09")

	buf.Reset()
	WriteTradeTable(&buf, &backtest.Result{})
	assert.Contains(t, buf.String(), "No trades executed")
}

func TestWriteComparison(t *testing.T) {
	var buf bytes.Buffer
	results := []backtest.SweepResult{
		{Strategy: "idle", Result: &backtest.Result{TotalPnL: 0}},
		{Strategy: "winner", Result: &backtest.Result{TotalPnL: 500, ProfitFactor: 2.5}},
	}
	WriteComparison(&buf, results)
	out := buf.String()

	assert.Contains(t, out, "Strategy Comparison")
	// Sorted by PnL descending: winner line comes before idle line.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("winner")), bytes.Index(buf.Bytes(), []byte("idle")))
	assert.Contains(t, out, "2.50")
}

func TestRenderEquityChart(t *testing.T) {
	result := sampleResult()
	result.EquityCurve = []backtest.EquityPoint{
		{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Equity: 10000},
		{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Equity: 10500},
		{Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Equity: 10909.09},
	}

	path, err := RenderEquityChart(result, "rsi_14", t.TempDir())
	assert.NoError(t, err)
	assert.FileExists(t, path)
}

func TestRenderEquityChartEmptyCurve(t *testing.T) {
	_, err := RenderEquityChart(&backtest.Result{}, "rsi_14", t.TempDir())
	assert.Error(t, err)
}
