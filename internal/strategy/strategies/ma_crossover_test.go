package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantsim/internal/domain"
)

func TestNewMACrossover(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MACrossoverConfig
		wantErr bool
	}{
		{name: "valid sma", cfg: MACrossoverConfig{FastPeriod: 50, SlowPeriod: 200, Type: SimpleMA}, wantErr: false},
		{name: "valid ema", cfg: MACrossoverConfig{FastPeriod: 12, SlowPeriod: 26, Type: ExponentialMA}, wantErr: false},
		{name: "default type", cfg: MACrossoverConfig{FastPeriod: 10, SlowPeriod: 20}, wantErr: false},
		{name: "zero fast period", cfg: MACrossoverConfig{FastPeriod: 0, SlowPeriod: 20}, wantErr: true},
		{name: "fast not below slow", cfg: MACrossoverConfig{FastPeriod: 20, SlowPeriod: 20}, wantErr: true},
		{name: "unknown type", cfg: MACrossoverConfig{FastPeriod: 10, SlowPeriod: 20, Type: MAType("wma")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMACrossover(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMACrossoverGoldenCross(t *testing.T) {
	strat, err := NewMACrossover(MACrossoverConfig{FastPeriod: 2, SlowPeriod: 3, Type: SimpleMA})
	require.NoError(t, err)
	assert.Equal(t, "sma_cross_2_3", strat.Name())
	assert.Equal(t, 4, strat.WarmupPeriod())

	// Fast SMA: [_, 10, 10, 7.5, 5, 12.5, 25]
	// Slow SMA: [_, _, 10, 8.33, 6.67, 10, 18.33]
	// The drop crosses fast below slow at index 3, the rally back above at 5.
	bars := testBars(10, 10, 10, 5, 5, 20, 30)
	signals, err := strat.GenerateSignals(context.Background(), bars)
	require.NoError(t, err)

	assert.Equal(t, domain.SignalSell, signals[3])
	assert.Equal(t, domain.SignalBuy, signals[5])
	for i, s := range signals {
		if i != 3 && i != 5 {
			assert.Equal(t, domain.SignalHold, s, "index %d", i)
		}
	}
}

func TestMACrossoverDeathCross(t *testing.T) {
	strat, err := NewMACrossover(MACrossoverConfig{FastPeriod: 2, SlowPeriod: 3, Type: SimpleMA})
	require.NoError(t, err)

	// Fast SMA: [_, 5, 12.5, 20, 12.5, 5]
	// Slow SMA: [_, _, 10, 15, 15, 10]
	bars := testBars(5, 5, 20, 20, 5, 5)
	signals, err := strat.GenerateSignals(context.Background(), bars)
	require.NoError(t, err)

	assert.Equal(t, domain.SignalSell, signals[4])
}

func TestMACrossoverEMAVariant(t *testing.T) {
	strat, err := NewMACrossover(MACrossoverConfig{FastPeriod: 2, SlowPeriod: 4, Type: ExponentialMA})
	require.NoError(t, err)
	assert.Equal(t, "ema_cross_2_4", strat.Name())

	// A long downtrend followed by a strong rally must produce at least one
	// buy after the slow EMA warms up.
	bars := testBars(100, 95, 90, 85, 80, 75, 100, 120, 140)
	signals, err := strat.GenerateSignals(context.Background(), bars)
	require.NoError(t, err)
	require.Len(t, signals, len(bars))

	var sawBuy bool
	for _, s := range signals {
		if s == domain.SignalBuy {
			sawBuy = true
		}
	}
	assert.True(t, sawBuy)
}
