package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBar(day int, close float64) *Bar {
	return &Bar{
		Timestamp: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Symbol:    "ETHUSDT",
		Interval:  "1d",
		Open:      close,
		High:      close * 1.02,
		Low:       close * 0.98,
		Close:     close,
		Volume:    1000,
	}
}

func TestValidateBars(t *testing.T) {
	tests := []struct {
		name    string
		bars    func() []*Bar
		wantErr bool
	}{
		{
			name:    "empty series",
			bars:    func() []*Bar { return nil },
			wantErr: false,
		},
		{
			name:    "valid series",
			bars:    func() []*Bar { return []*Bar{validBar(1, 100), validBar(2, 110), validBar(3, 105)} },
			wantErr: false,
		},
		{
			name: "nil bar",
			bars: func() []*Bar {
				return []*Bar{validBar(1, 100), nil}
			},
			wantErr: true,
		},
		{
			name: "non-positive price",
			bars: func() []*Bar {
				b := validBar(1, 100)
				b.Close = 0
				return []*Bar{b}
			},
			wantErr: true,
		},
		{
			name: "high below low",
			bars: func() []*Bar {
				b := validBar(1, 100)
				b.High = 90
				b.Low = 110
				return []*Bar{b}
			},
			wantErr: true,
		},
		{
			name: "close above high",
			bars: func() []*Bar {
				b := validBar(1, 100)
				b.Close = b.High + 1
				return []*Bar{b}
			},
			wantErr: true,
		},
		{
			name: "close below low",
			bars: func() []*Bar {
				b := validBar(1, 100)
				b.Close = b.Low - 1
				return []*Bar{b}
			},
			wantErr: true,
		},
		{
			name: "negative volume",
			bars: func() []*Bar {
				b := validBar(1, 100)
				b.Volume = -1
				return []*Bar{b}
			},
			wantErr: true,
		},
		{
			name: "duplicate timestamp",
			bars: func() []*Bar {
				a := validBar(1, 100)
				b := validBar(1, 110)
				return []*Bar{a, b}
			},
			wantErr: true,
		},
		{
			name: "out of order timestamps",
			bars: func() []*Bar {
				return []*Bar{validBar(2, 100), validBar(1, 110)}
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBars(tt.bars())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSeries)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCloses(t *testing.T) {
	bars := []*Bar{validBar(1, 100), validBar(2, 110), validBar(3, 95)}
	assert.Equal(t, []float64{100, 110, 95}, Closes(bars))
	assert.Empty(t, Closes(nil))
}
