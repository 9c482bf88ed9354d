package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"quantsim/internal/domain"
)

// WriteBarsToCSV writes a bar series to a CSV file with a header row.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"timestamp", "symbol", "interval", "open", "high", "low", "close", "volume"})

	for _, b := range bars {
		writer.Write([]string{
			b.Timestamp.Format(time.RFC3339),
			b.Symbol,
			b.Interval,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadBarsFromCSV loads a bar series from a CSV file written by
// WriteBarsToCSV. The header row is required.
func ReadBarsFromCSV(filename string) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header from %s: %w", filename, err)
	}
	if len(header) < 8 {
		return nil, fmt.Errorf("unexpected CSV header in %s: want 8 columns, got %d", filename, len(header))
	}

	var bars []*domain.Bar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record at line %d: %w", line, err)
		}

		bar, err := parseBarRecord(record)
		if err != nil {
			return nil, fmt.Errorf("invalid bar at line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBarRecord(record []string) (*domain.Bar, error) {
	if len(record) < 8 {
		return nil, fmt.Errorf("want 8 fields, got %d", len(record))
	}

	timestamp, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", record[0], err)
	}

	fields := make([]float64, 5)
	names := []string{"open", "high", "low", "close", "volume"}
	for i, name := range names {
		v, err := strconv.ParseFloat(record[3+i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s %q: %w", name, record[3+i], err)
		}
		fields[i] = v
	}

	return &domain.Bar{
		Timestamp: timestamp,
		Symbol:    record[1],
		Interval:  record[2],
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}

// WriteTradesToCSV writes completed trades to a CSV file for external analysis.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"symbol", "entry_time", "exit_time", "entry_price", "exit_price", "quantity", "pnl", "pnl_percent", "commission"})

	for _, t := range trades {
		writer.Write([]string{
			t.Symbol,
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(t.Quantity, 'f', -1, 64),
			strconv.FormatFloat(t.PnL, 'f', -1, 64),
			strconv.FormatFloat(t.PnLPercent, 'f', -1, 64),
			strconv.FormatFloat(t.Commission, 'f', -1, 64),
		})
	}
	return writer.Error()
}
