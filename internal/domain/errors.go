package domain

import "errors"

// Structural input violations. These are fatal: the run aborts before
// producing a result (unlike order rejections, which are order statuses).
var (
	ErrInvalidSeries = errors.New("invalid bar series")
	ErrInvalidSignal = errors.New("invalid signal series")
	ErrInvalidOrder  = errors.New("invalid order")
)
