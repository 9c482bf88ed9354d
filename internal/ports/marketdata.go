package ports

import (
	"context"
	"time"

	"quantsim/internal/domain"
)

// MarketDataProvider defines the interface for fetching historical market
// data. The engine itself never touches a provider; data acquisition is an
// earlier phase that materializes the full bar series before a run starts.
type MarketDataProvider interface {
	// Ping checks connectivity to the data source.
	Ping(ctx context.Context) error

	// GetServerTime retrieves the current server time from the data source.
	GetServerTime(ctx context.Context) (time.Time, error)

	// GetTickerPrice retrieves the last traded price for a symbol.
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)

	// GetBars retrieves the most recent bars for the given symbol, up to limit.
	GetBars(ctx context.Context, symbol, interval string, limit int) ([]*domain.Bar, error)

	// GetBarsRange retrieves all bars for a symbol/interval between start and
	// end, paginating as needed. Bars are returned in chronological order.
	GetBarsRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)
}
