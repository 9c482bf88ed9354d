package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantsim/internal/domain"
)

func TestNewBollinger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BollingerConfig
		wantErr bool
	}{
		{name: "valid", cfg: BollingerConfig{Period: 20, NumStd: 2.0}, wantErr: false},
		{name: "zero period", cfg: BollingerConfig{Period: 0, NumStd: 2.0}, wantErr: true},
		{name: "zero band width", cfg: BollingerConfig{Period: 20, NumStd: 0}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBollinger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBollingerSignals(t *testing.T) {
	// A lone outlier in a 5-bar window sits exactly 2 standard deviations
	// from the mean, so a 1.5-sigma band catches it.
	strat, err := NewBollinger(BollingerConfig{Period: 5, NumStd: 1.5})
	require.NoError(t, err)
	assert.Equal(t, "bollinger_5", strat.Name())
	assert.Equal(t, 5, strat.WarmupPeriod())

	t.Run("crash below lower band buys", func(t *testing.T) {
		bars := testBars(100, 100, 100, 100, 100, 100, 100, 80)
		signals, err := strat.GenerateSignals(context.Background(), bars)
		require.NoError(t, err)
		assert.Equal(t, domain.SignalBuy, signals[len(signals)-1])
	})

	t.Run("spike above upper band sells", func(t *testing.T) {
		bars := testBars(100, 100, 100, 100, 100, 100, 100, 120)
		signals, err := strat.GenerateSignals(context.Background(), bars)
		require.NoError(t, err)
		assert.Equal(t, domain.SignalSell, signals[len(signals)-1])
	})

	t.Run("flat series holds", func(t *testing.T) {
		bars := testBars(100, 100, 100, 100, 100, 100, 100, 100)
		signals, err := strat.GenerateSignals(context.Background(), bars)
		require.NoError(t, err)
		for _, s := range signals {
			assert.Equal(t, domain.SignalHold, s)
		}
	})

	t.Run("short series holds", func(t *testing.T) {
		bars := testBars(100, 101)
		signals, err := strat.GenerateSignals(context.Background(), bars)
		require.NoError(t, err)
		require.Len(t, signals, 2)
		for _, s := range signals {
			assert.Equal(t, domain.SignalHold, s)
		}
	})
}
