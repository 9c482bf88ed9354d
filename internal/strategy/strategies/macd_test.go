package strategies

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantsim/internal/domain"
)

func TestNewMACD(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MACDConfig
		wantErr bool
	}{
		{name: "valid", cfg: MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}, wantErr: false},
		{name: "zero period", cfg: MACDConfig{FastPeriod: 0, SlowPeriod: 26, SignalPeriod: 9}, wantErr: true},
		{name: "fast not below slow", cfg: MACDConfig{FastPeriod: 26, SlowPeriod: 26, SignalPeriod: 9}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMACD(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMACDSignals(t *testing.T) {
	strat, err := NewMACD(MACDConfig{FastPeriod: 3, SlowPeriod: 6, SignalPeriod: 3})
	require.NoError(t, err)
	assert.Equal(t, "macd_3_6_3", strat.Name())
	assert.Equal(t, 9, strat.WarmupPeriod())

	t.Run("short series holds", func(t *testing.T) {
		bars := testBars(100, 101, 102)
		signals, err := strat.GenerateSignals(context.Background(), bars)
		require.NoError(t, err)
		require.Len(t, signals, 3)
		for _, s := range signals {
			assert.Equal(t, domain.SignalHold, s)
		}
	})

	t.Run("oscillating series produces crossings", func(t *testing.T) {
		// Slow sine wave: momentum flips sign twice per cycle, so the
		// histogram must cross zero in both directions.
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100 + 10*math.Sin(float64(i)/5)
		}
		bars := testBars(closes...)

		signals, err := strat.GenerateSignals(context.Background(), bars)
		require.NoError(t, err)
		require.Len(t, signals, len(bars))
		require.NoError(t, domain.ValidateSignals(signals, len(bars)))

		var buys, sells int
		for i, s := range signals {
			if i < strat.WarmupPeriod() {
				assert.Equal(t, domain.SignalHold, s, "warmup index %d", i)
			}
			switch s {
			case domain.SignalBuy:
				buys++
			case domain.SignalSell:
				sells++
			}
		}
		assert.Greater(t, buys, 0)
		assert.Greater(t, sells, 0)
	})
}
