package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantbt/internal/types"
)

const sampleCSV = `timestamp,open,high,low,close,volume
2024-01-02,100,102,99,101,5000
2024-01-03,101,103,100,102,5200
2024-01-04,102,104,101,103,4800
bad-timestamp,1,2,0,1,100
2024-01-05,103,102,101,102,4700
2024-01-08,102,106,102,105,6100
`

func writeSampleFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sampleCSV), 0644))
}

func TestLoadSymbol(t *testing.T) {
	dir := t.TempDir()
	writeSampleFile(t, dir, "AAPL.csv")

	loader := NewLoader(LoaderConfig{Directory: dir})
	bars, err := loader.LoadSymbol("AAPL")
	require.NoError(t, err)

	// the bad-timestamp row and the high<close row are skipped
	require.Len(t, bars, 4)
	first := bars[0]
	assert.Equal(t, "AAPL", first.Symbol)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 102.0, first.High)
	assert.Equal(t, 99.0, first.Low)
	assert.Equal(t, 101.0, first.Close)
	assert.Equal(t, 5000.0, first.Volume)
}

func TestLoadSymbolLowercaseFilename(t *testing.T) {
	dir := t.TempDir()
	writeSampleFile(t, dir, "aapl.csv")

	loader := NewLoader(LoaderConfig{Directory: dir})
	bars, err := loader.LoadSymbol("AAPL")
	require.NoError(t, err)
	assert.Len(t, bars, 4)
}

func TestLoadSymbolMissingFileIsError(t *testing.T) {
	loader := NewLoader(LoaderConfig{Directory: t.TempDir()})
	_, err := loader.LoadSymbol("MSFT")
	assert.Error(t, err)
}

func TestLoadSymbolDateRangeFilter(t *testing.T) {
	dir := t.TempDir()
	writeSampleFile(t, dir, "AAPL.csv")

	loader := NewLoader(LoaderConfig{
		Directory: dir,
		StartTime: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	})
	bars, err := loader.LoadSymbol("AAPL")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 102.0, bars[0].Close)
	assert.Equal(t, 103.0, bars[1].Close)
}

func TestLoadSymbolEmptyRangeIsError(t *testing.T) {
	dir := t.TempDir()
	writeSampleFile(t, dir, "AAPL.csv")

	loader := NewLoader(LoaderConfig{
		Directory: dir,
		StartTime: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	_, err := loader.LoadSymbol("AAPL")
	assert.Error(t, err)
}

func TestLoadSymbolInvalidHeaderIsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"),
		[]byte("date,o,h,l,c,v\n2024-01-02,1,2,0,1,10\n"), 0644))

	loader := NewLoader(LoaderConfig{Directory: dir})
	_, err := loader.LoadSymbol("AAPL")
	assert.Error(t, err)
}

func TestLoadMergesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeSampleFile(t, dir, "AAPL.csv")
	writeSampleFile(t, dir, "MSFT.csv")

	loader := NewLoader(LoaderConfig{Directory: dir})
	bars, err := loader.Load([]string{"AAPL", "MSFT"})
	require.NoError(t, err)
	require.Len(t, bars, 8)
	for i := 1; i < len(bars); i++ {
		assert.False(t, bars[i].Timestamp.Before(bars[i-1].Timestamp))
	}
}

func TestLoadNoSymbolsIsError(t *testing.T) {
	loader := NewLoader(LoaderConfig{Directory: t.TempDir()})
	_, err := loader.Load(nil)
	assert.Error(t, err)
}

func TestResampleWeekly(t *testing.T) {
	daily := []types.PriceBar{
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 101, High: 105, Low: 100, Close: 104, Volume: 1200},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 104, High: 104, Low: 98, Close: 99, Volume: 900},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Open: 99, High: 101, Low: 98, Close: 100, Volume: 800},
	}

	weekly, err := Resample(daily, TimeframeWeekly)
	require.NoError(t, err)
	require.Len(t, weekly, 2)

	first := weekly[0]
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 105.0, first.High)
	assert.Equal(t, 98.0, first.Low)
	assert.Equal(t, 99.0, first.Close)
	assert.Equal(t, 3100.0, first.Volume)
	assert.True(t, first.Timestamp.Before(weekly[1].Timestamp))

	// Buckets start on Mondays: 2024-01-01 and 2024-01-08
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), weekly[1].Timestamp)
}

func TestResampleWeeklyBucketsStartOnMonday(t *testing.T) {
	// A Sunday and the following Monday land in different weeks
	daily := []types.PriceBar{
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), Open: 100, High: 101, Low: 99, Close: 100, Volume: 10},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Open: 100, High: 101, Low: 99, Close: 100, Volume: 10},
	}

	weekly, err := Resample(daily, TimeframeWeekly)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), weekly[0].Timestamp)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), weekly[1].Timestamp)
}

func TestResampleMonthlyCalendarBuckets(t *testing.T) {
	daily := []types.PriceBar{
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), Open: 100, High: 103, Low: 99, Close: 102, Volume: 500},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), Open: 102, High: 106, Low: 101, Close: 105, Volume: 600},
		{Symbol: "AAPL", Timestamp: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Open: 105, High: 107, Low: 104, Close: 106, Volume: 700},
	}

	monthly, err := Resample(daily, TimeframeMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 2)

	jan := monthly[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), jan.Timestamp)
	assert.Equal(t, 100.0, jan.Open)
	assert.Equal(t, 106.0, jan.High)
	assert.Equal(t, 105.0, jan.Close)
	assert.Equal(t, 1100.0, jan.Volume)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), monthly[1].Timestamp)
}

func TestResampleKeepsSymbolsSeparate(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []types.PriceBar{
		{Symbol: "AAPL", Timestamp: day, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
		{Symbol: "MSFT", Timestamp: day, Open: 200, High: 201, Low: 199, Close: 200, Volume: 1},
	}

	weekly, err := Resample(bars, TimeframeWeekly)
	require.NoError(t, err)
	assert.Len(t, weekly, 2)
}

func TestResampleUnsupportedTimeframeIsError(t *testing.T) {
	_, err := Resample(nil, Timeframe("4h"))
	assert.Error(t, err)
}
