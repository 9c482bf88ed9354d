package strategies

import (
	"fmt"
	"strings"

	"quantsim/internal/ports"
)

// Params carries the tunable parameters for every built-in strategy, so the
// outer configuration layer can construct any of them by name without
// depending on concrete types.
type Params struct {
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64

	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int

	BollingerPeriod int
	BollingerNumStd float64

	FastMAPeriod int
	SlowMAPeriod int

	ConsensusThreshold int
}

// DefaultParams returns the conventional defaults for all strategies.
func DefaultParams() Params {
	return Params{
		RSIPeriod:          14,
		RSIOversold:        30,
		RSIOverbought:      70,
		MACDFastPeriod:     12,
		MACDSlowPeriod:     26,
		MACDSignalPeriod:   9,
		BollingerPeriod:    20,
		BollingerNumStd:    2.0,
		FastMAPeriod:       50,
		SlowMAPeriod:       200,
		ConsensusThreshold: 2,
	}
}

// Names lists the strategy names accepted by New.
func Names() []string {
	return []string{"rsi", "macd", "bollinger", "sma_cross", "ema_cross", "combined"}
}

// New constructs a strategy by name. "combined" is the consensus vote of the
// RSI, MACD and Bollinger strategies with the configured threshold.
func New(name string, p Params) (ports.Strategy, error) {
	switch strings.ToLower(name) {
	case "rsi":
		return NewRSI(RSIConfig{Period: p.RSIPeriod, Oversold: p.RSIOversold, Overbought: p.RSIOverbought})
	case "macd":
		return NewMACD(MACDConfig{FastPeriod: p.MACDFastPeriod, SlowPeriod: p.MACDSlowPeriod, SignalPeriod: p.MACDSignalPeriod})
	case "bollinger":
		return NewBollinger(BollingerConfig{Period: p.BollingerPeriod, NumStd: p.BollingerNumStd})
	case "sma_cross":
		return NewMACrossover(MACrossoverConfig{FastPeriod: p.FastMAPeriod, SlowPeriod: p.SlowMAPeriod, Type: SimpleMA})
	case "ema_cross":
		return NewMACrossover(MACrossoverConfig{FastPeriod: p.FastMAPeriod, SlowPeriod: p.SlowMAPeriod, Type: ExponentialMA})
	case "combined":
		rsi, err := NewRSI(RSIConfig{Period: p.RSIPeriod, Oversold: p.RSIOversold, Overbought: p.RSIOverbought})
		if err != nil {
			return nil, err
		}
		macd, err := NewMACD(MACDConfig{FastPeriod: p.MACDFastPeriod, SlowPeriod: p.MACDSlowPeriod, SignalPeriod: p.MACDSignalPeriod})
		if err != nil {
			return nil, err
		}
		bollinger, err := NewBollinger(BollingerConfig{Period: p.BollingerPeriod, NumStd: p.BollingerNumStd})
		if err != nil {
			return nil, err
		}
		return NewCombined([]ports.Strategy{rsi, macd, bollinger}, p.ConsensusThreshold)
	default:
		return nil, fmt.Errorf("unknown strategy %q (known: %s)", name, strings.Join(Names(), ", "))
	}
}
