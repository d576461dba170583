package data

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"quantbt/internal/types"
)

// GeneratorConfig holds synthetic data generator configuration
type GeneratorConfig struct {
	InitialPrice float64 `json:"initial_price" yaml:"initial_price"`
	Volatility   float64 `json:"volatility" yaml:"volatility"` // daily return stddev
	Drift        float64 `json:"drift" yaml:"drift"`           // daily mean return
	BaseVolume   float64 `json:"base_volume" yaml:"base_volume"`
	Seed         int64   `json:"seed" yaml:"seed"`
}

// Generator produces synthetic daily bars with a seeded random walk, for
// testing strategies without real market data.
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a new synthetic bar generator
func NewGenerator(config GeneratorConfig) *Generator {
	if config.InitialPrice <= 0 {
		config.InitialPrice = 100
	}
	if config.Volatility <= 0 {
		config.Volatility = 0.02
	}
	if config.BaseVolume <= 0 {
		config.BaseVolume = 10000
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Bars generates n daily bars for the symbol starting at the given date.
// Each close follows the previous by drift plus gaussian noise; high and
// low bracket the open/close range and volume scales with the move size.
func (g *Generator) Bars(symbol string, start time.Time, n int) []types.PriceBar {
	bars := make([]types.PriceBar, 0, n)
	price := g.config.InitialPrice

	for i := 0; i < n; i++ {
		ret := g.config.Drift + g.rng.NormFloat64()*g.config.Volatility
		open := price
		close := open * (1 + ret)
		if close < 0.01 {
			close = 0.01
		}

		spread := (open + close) / 2 * g.config.Volatility * g.rng.Float64()
		high := open
		if close > high {
			high = close
		}
		high += spread
		low := open
		if close < low {
			low = close
		}
		low -= spread
		if low < 0.01 {
			low = 0.01
		}

		magnitude := ret
		if magnitude < 0 {
			magnitude = -magnitude
		}
		volume := g.config.BaseVolume * (1 + magnitude*10)

		bars = append(bars, types.PriceBar{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})
		price = close
	}
	return bars
}

// WriteCSV writes bars in the loader's CSV format, one file per call
func WriteCSV(path string, bars []types.PriceBar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating data file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(requiredColumns); err != nil {
		return err
	}
	for _, bar := range bars {
		record := []string{
			bar.Timestamp.Format("2006-01-02"),
			formatPrice(bar.Open),
			formatPrice(bar.High),
			formatPrice(bar.Low),
			formatPrice(bar.Close),
			strconv.FormatFloat(bar.Volume, 'f', 0, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
