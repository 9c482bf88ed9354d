package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quantsim/internal/domain"
	"quantsim/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.BarRepository and ports.RunRepository
// interfaces using SQLite. It serves two purposes: caching downloaded bar
// history so repeated backtests skip the network, and keeping a durable
// record of completed runs for later comparison.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/quantsim.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency between parallel sweeps and readers.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS bars (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (symbol, interval, timestamp)
	);

	CREATE TABLE IF NOT EXISTS backtest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		strategy TEXT NOT NULL,
		interval TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		initial_capital REAL NOT NULL,
		final_capital REAL NOT NULL,
		total_pnl REAL NOT NULL,
		total_return_percent REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		max_drawdown_percent REAL NOT NULL,
		total_commission REAL NOT NULL,
		total_trades INTEGER NOT NULL,
		winning_trades INTEGER NOT NULL,
		losing_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		profit_factor REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		quantity REAL NOT NULL,
		pnl REAL NOT NULL,
		pnl_percent REAL NOT NULL,
		commission REAL NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bars_symbol_interval ON bars (symbol, interval, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_symbol_created ON backtest_runs (symbol, created_at);
	CREATE INDEX IF NOT EXISTS idx_run_trades_run ON run_trades (run_id);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- BarRepository Implementation ---

// SaveBars inserts bars, ignoring duplicates on (symbol, interval, timestamp).
func (r *Repository) SaveBars(ctx context.Context, bars []*domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ports.ErrDBConnection, err)
	}
	defer tx.Rollback()

	const query = `
	INSERT OR IGNORE INTO bars (symbol, interval, timestamp, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare bar insert: %v", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.ExecContext(ctx, bar.Symbol, bar.Interval, bar.Timestamp.UTC(),
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			return fmt.Errorf("%w: failed to insert bar at %s: %v", ports.ErrQueryFailed, bar.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit bar batch: %v", ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Saved bars", map[string]interface{}{"count": len(bars)})
	return nil
}

// FindBars retrieves bars for a symbol/interval between start and end,
// ordered by timestamp ascending.
func (r *Repository) FindBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error) {
	const query = `
	SELECT symbol, interval, timestamp, open, high, low, close, volume
	FROM bars
	WHERE symbol = ? AND interval = ? AND timestamp >= ? AND timestamp <= ?
	ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol, interval, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query bars for %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	var bars []*domain.Bar
	for rows.Next() {
		bar := &domain.Bar{}
		if err := rows.Scan(&bar.Symbol, &bar.Interval, &bar.Timestamp,
			&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("%w: failed to scan bar row: %v", ports.ErrQueryFailed, err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: bar row iteration failed: %v", ports.ErrQueryFailed, err)
	}
	return bars, nil
}

// CountBars returns the number of cached bars for a symbol/interval.
func (r *Repository) CountBars(ctx context.Context, symbol, interval string) (int, error) {
	const query = `SELECT COUNT(*) FROM bars WHERE symbol = ? AND interval = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, symbol, interval).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count bars for %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	return count, nil
}

// --- RunRepository Implementation ---

// SaveRun persists a run and its trades, returning the assigned run ID.
func (r *Repository) SaveRun(ctx context.Context, run *ports.BacktestRun) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", ports.ErrDBConnection, err)
	}
	defer tx.Rollback()

	const runQuery = `
	INSERT INTO backtest_runs (
		symbol, strategy, interval, created_at,
		initial_capital, final_capital, total_pnl, total_return_percent,
		sharpe_ratio, max_drawdown, max_drawdown_percent, total_commission,
		total_trades, winning_trades, losing_trades, win_rate, profit_factor
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := tx.ExecContext(ctx, runQuery,
		run.Symbol, run.Strategy, run.Interval, createdAt.UTC(),
		run.InitialCapital, run.FinalCapital, run.TotalPnL, run.TotalReturnPercent,
		run.SharpeRatio, run.MaxDrawdown, run.MaxDrawdownPercent, run.TotalCommission,
		run.TotalTrades, run.WinningTrades, run.LosingTrades, run.WinRate, run.ProfitFactor)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert run for %s: %v", ports.ErrQueryFailed, run.Symbol, err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get run ID: %v", ports.ErrQueryFailed, err)
	}

	const tradeQuery = `
	INSERT INTO run_trades (run_id, symbol, entry_price, exit_price, quantity, pnl, pnl_percent, commission, entry_time, exit_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, trade := range run.Trades {
		if _, err := tx.ExecContext(ctx, tradeQuery,
			runID, trade.Symbol, trade.EntryPrice, trade.ExitPrice, trade.Quantity,
			trade.PnL, trade.PnLPercent, trade.Commission,
			trade.EntryTime.UTC(), trade.ExitTime.UTC()); err != nil {
			return 0, fmt.Errorf("%w: failed to insert trade for run %d: %v", ports.ErrQueryFailed, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit run: %v", ports.ErrUpdateFailed, err)
	}

	r.logger.Info(ctx, "Backtest run saved", map[string]interface{}{
		"runID":    runID,
		"symbol":   run.Symbol,
		"strategy": run.Strategy,
		"trades":   len(run.Trades),
	})
	return runID, nil
}

// FindRuns retrieves the most recent runs, optionally filtered by symbol.
func (r *Repository) FindRuns(ctx context.Context, symbol string, limit int) ([]*ports.BacktestRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, symbol, strategy, interval, created_at,
		initial_capital, final_capital, total_pnl, total_return_percent,
		sharpe_ratio, max_drawdown, max_drawdown_percent, total_commission,
		total_trades, winning_trades, losing_trades, win_rate, profit_factor
	FROM backtest_runs`
	args := []interface{}{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query runs: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var runs []*ports.BacktestRun
	for rows.Next() {
		run := &ports.BacktestRun{}
		if err := rows.Scan(&run.ID, &run.Symbol, &run.Strategy, &run.Interval, &run.CreatedAt,
			&run.InitialCapital, &run.FinalCapital, &run.TotalPnL, &run.TotalReturnPercent,
			&run.SharpeRatio, &run.MaxDrawdown, &run.MaxDrawdownPercent, &run.TotalCommission,
			&run.TotalTrades, &run.WinningTrades, &run.LosingTrades, &run.WinRate, &run.ProfitFactor); err != nil {
			return nil, fmt.Errorf("%w: failed to scan run row: %v", ports.ErrQueryFailed, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: run row iteration failed: %v", ports.ErrQueryFailed, err)
	}
	return runs, nil
}

// FindTradesByRun retrieves the trades recorded for a run. Returns
// ports.ErrNotFound when no run with the given ID exists, so callers can
// distinguish an unknown run from a run that closed no trades.
func (r *Repository) FindTradesByRun(ctx context.Context, runID int64) ([]*domain.Trade, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM backtest_runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%w: failed to look up run %d: %v", ports.ErrQueryFailed, runID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: run %d", ports.ErrNotFound, runID)
	}

	const query = `
	SELECT symbol, entry_price, exit_price, quantity, pnl, pnl_percent, commission, entry_time, exit_time
	FROM run_trades
	WHERE run_id = ?
	ORDER BY exit_time ASC`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query trades for run %d: %v", ports.ErrQueryFailed, runID, err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		trade := &domain.Trade{}
		if err := rows.Scan(&trade.Symbol, &trade.EntryPrice, &trade.ExitPrice, &trade.Quantity,
			&trade.PnL, &trade.PnLPercent, &trade.Commission, &trade.EntryTime, &trade.ExitTime); err != nil {
			return nil, fmt.Errorf("%w: failed to scan trade row: %v", ports.ErrQueryFailed, err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: trade row iteration failed: %v", ports.ErrQueryFailed, err)
	}
	return trades, nil
}
