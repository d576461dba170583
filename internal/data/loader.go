// Package data loads historical price bars from CSV files and resamples
// them across timeframes.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"quantbt/internal/logging"
	"quantbt/internal/types"
)

// requiredColumns are the CSV columns every data file must carry, in order
var requiredColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// timestampFormats are tried in order when parsing the timestamp column
var timestampFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05.000",
	time.RFC3339,
	"2006/01/02 15:04:05",
}

// LoaderConfig holds data loader configuration
type LoaderConfig struct {
	Directory string    `json:"directory" yaml:"directory"`
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`
}

// Loader reads OHLCV bars for symbols from CSV files in a directory
type Loader struct {
	config LoaderConfig
	logger *logging.Logger
}

// NewLoader creates a new CSV data loader
func NewLoader(config LoaderConfig) *Loader {
	return &Loader{
		config: config,
		logger: logging.NewComponentLogger("data"),
	}
}

// Load reads bars for all symbols and merges them into one sequence sorted
// by timestamp, so multi-symbol runs see bars in chronological order.
func (l *Loader) Load(symbols []string) ([]types.PriceBar, error) {
	if l.config.Directory == "" {
		return nil, fmt.Errorf("data directory must be specified")
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol must be specified")
	}

	var all []types.PriceBar
	for _, symbol := range symbols {
		bars, err := l.LoadSymbol(symbol)
		if err != nil {
			return nil, fmt.Errorf("loading data for %s: %w", symbol, err)
		}
		all = append(all, bars...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	l.logger.Infof("Loaded %d bars for %d symbols", len(all), len(symbols))
	return all, nil
}

// LoadSymbol reads the bars for a single symbol. Several filename
// spellings are tried so both BTCUSDT.csv and btcusdt.csv work.
func (l *Loader) LoadSymbol(symbol string) ([]types.PriceBar, error) {
	candidates := []string{
		filepath.Join(l.config.Directory, symbol+".csv"),
		filepath.Join(l.config.Directory, strings.ToLower(symbol)+".csv"),
		filepath.Join(l.config.Directory, strings.ToUpper(symbol)+".csv"),
	}

	var file *os.File
	var err error
	for _, name := range candidates {
		file, err = os.Open(name)
		if err == nil {
			l.logger.Infof("Loading data from: %s", name)
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("CSV file not found for symbol %s (tried: %v)", symbol, candidates)
	}
	defer file.Close()

	bars, err := l.readBars(file, symbol)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for symbol %s in the configured date range", symbol)
	}
	return bars, nil
}

// readBars parses the CSV stream. Malformed rows are skipped with a
// warning rather than aborting the load.
func (l *Loader) readBars(r io.Reader, symbol string) ([]types.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if !validHeader(header) {
		return nil, fmt.Errorf("invalid CSV header, required columns: %v", requiredColumns)
	}

	var bars []types.PriceBar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV record at line %d: %w", line, err)
		}
		line++

		if len(record) < len(requiredColumns) {
			continue
		}
		bar, err := parseRecord(record, symbol)
		if err != nil {
			l.logger.Warnf("Skipping line %d: %v", line, err)
			continue
		}
		if l.inRange(bar.Timestamp) {
			bars = append(bars, bar)
		}
	}
	return bars, nil
}

// inRange applies the configured date filter; zero bounds mean unbounded
func (l *Loader) inRange(t time.Time) bool {
	if !l.config.StartTime.IsZero() && t.Before(l.config.StartTime) {
		return false
	}
	if !l.config.EndTime.IsZero() && t.After(l.config.EndTime) {
		return false
	}
	return true
}

func validHeader(header []string) bool {
	if len(header) < len(requiredColumns) {
		return false
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[strings.ToLower(strings.TrimSpace(h))] = true
	}
	for _, req := range requiredColumns {
		if !seen[req] {
			return false
		}
	}
	return true
}

// parseRecord parses one CSV row into a bar and validates the OHLC
// relationships.
func parseRecord(record []string, symbol string) (types.PriceBar, error) {
	var timestamp time.Time
	var err error
	for _, format := range timestampFormats {
		timestamp, err = time.Parse(format, strings.TrimSpace(record[0]))
		if err == nil {
			break
		}
	}
	if err != nil {
		return types.PriceBar{}, fmt.Errorf("invalid timestamp: %s", record[0])
	}

	fields := make([]float64, 5)
	names := []string{"open", "high", "low", "close", "volume"}
	for i := range fields {
		fields[i], err = strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return types.PriceBar{}, fmt.Errorf("invalid %s: %s", names[i], record[i+1])
		}
	}
	open, high, low, close, volume := fields[0], fields[1], fields[2], fields[3], fields[4]

	if high < low || high < open || high < close || low > open || low > close {
		return types.PriceBar{}, fmt.Errorf("invalid OHLC relationships: O=%.4f H=%.4f L=%.4f C=%.4f", open, high, low, close)
	}

	return types.PriceBar{
		Symbol:    symbol,
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}, nil
}
