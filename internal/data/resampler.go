package data

import (
	"fmt"
	"sort"
	"time"

	"quantbt/internal/types"
)

// Timeframe represents a bar aggregation interval
type Timeframe string

const (
	TimeframeDaily   Timeframe = "1d"
	TimeframeWeekly  Timeframe = "1w"
	TimeframeMonthly Timeframe = "1M"
)

// Align returns the calendar bucket start containing t: midnight of the
// day, Monday of the week, or the first of the month, in t's location.
func (tf Timeframe) Align(t time.Time) (time.Time, error) {
	switch tf {
	case TimeframeDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
	case TimeframeWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return day.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7)), nil
	case TimeframeMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timeframe: %q", tf)
	}
}

// Resample aggregates bars into coarser buckets, per symbol. Within a
// bucket the open is the first bar's open, high and low are the extremes,
// close is the last bar's close and volume is summed. Input order per
// symbol is preserved; output is sorted by timestamp.
func Resample(bars []types.PriceBar, timeframe Timeframe) ([]types.PriceBar, error) {
	if _, err := timeframe.Align(time.Time{}); err != nil {
		return nil, err
	}

	type bucketKey struct {
		symbol string
		start  time.Time
	}
	buckets := make(map[bucketKey]*types.PriceBar)
	order := make([]bucketKey, 0)

	for _, bar := range bars {
		start, _ := timeframe.Align(bar.Timestamp)
		key := bucketKey{symbol: bar.Symbol, start: start}
		bucket, exists := buckets[key]
		if !exists {
			aggregated := bar
			aggregated.Timestamp = key.start
			buckets[key] = &aggregated
			order = append(order, key)
			continue
		}
		if bar.High > bucket.High {
			bucket.High = bar.High
		}
		if bar.Low < bucket.Low {
			bucket.Low = bar.Low
		}
		bucket.Close = bar.Close
		bucket.Volume += bar.Volume
	}

	result := make([]types.PriceBar, 0, len(order))
	for _, key := range order {
		result = append(result, *buckets[key])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}
