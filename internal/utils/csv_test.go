package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantsim/internal/domain"
)

func TestBarCSVRoundTrip(t *testing.T) {
	bars := []*domain.Bar{
		{
			Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Symbol:    "ETHUSDT",
			Interval:  "1d",
			Open:      100,
			High:      105.5,
			Low:       98.25,
			Close:     104,
			Volume:    12345.678,
		},
		{
			Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Symbol:    "ETHUSDT",
			Interval:  "1d",
			Open:      104,
			High:      110,
			Low:       103,
			Close:     109.99,
			Volume:    9876.5,
		},
	}

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, WriteBarsToCSV(bars, path))

	got, err := ReadBarsFromCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, got[0].Timestamp.Equal(bars[0].Timestamp))
	assert.Equal(t, "ETHUSDT", got[0].Symbol)
	assert.Equal(t, "1d", got[0].Interval)
	assert.InDelta(t, 104.0, got[0].Close, 1e-9)
	assert.InDelta(t, 12345.678, got[0].Volume, 1e-9)
	assert.InDelta(t, 109.99, got[1].Close, 1e-9)
}

func TestReadBarsFromCSVErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadBarsFromCSV(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		content := "timestamp,symbol,interval,open,high,low,close,volume\n" +
			"not-a-time,ETHUSDT,1d,100,105,98,104,1000\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := ReadBarsFromCSV(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("bad price", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		content := "timestamp,symbol,interval,open,high,low,close,volume\n" +
			"2024-01-01T00:00:00Z,ETHUSDT,1d,abc,105,98,104,1000\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := ReadBarsFromCSV(path)
		assert.Error(t, err)
	})

	t.Run("truncated header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("timestamp,symbol\n"), 0644))

		_, err := ReadBarsFromCSV(path)
		assert.Error(t, err)
	})
}

func TestWriteTradesToCSV(t *testing.T) {
	trades := []*domain.Trade{
		{
			Symbol:     "ETHUSDT",
			EntryPrice: 110,
			ExitPrice:  120,
			Quantity:   90.909,
			PnL:        909.09,
			PnLPercent: 9.09,
			Commission: 2.2,
			EntryTime:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			ExitTime:   time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, WriteTradesToCSV(trades, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "entry_price")
	assert.Contains(t, string(content), "909.09")
	assert.Contains(t, string(content), "2024-01-02T00:00:00Z")
}
