package indicators

import "math"

// SMA computes the simple moving average series over the given period. The
// output is aligned with the input; entries inside the warmup window are NaN.
func SMA(values []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	var sum float64
	for i := range values {
		sum += values[i]
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= period {
			sum -= values[i-period]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// EMA computes the exponential moving average series with smoothing
// 2/(period+1), seeded with the SMA of the first period values. Warmup
// entries are NaN.
func EMA(values []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	if len(values) < period {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
		if i < period-1 {
			out[i] = math.NaN()
		}
	}
	out[period-1] = seed / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}
