package types

import (
	"sort"
	"time"

	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// Built-in column names available on every series.
const (
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// Bar is a single timestamped OHLCV observation.
type Bar struct {
	Time   time.Time `csv:"timestamp" json:"timestamp"`
	Open   float64   `csv:"open" json:"open"`
	High   float64   `csv:"high" json:"high"`
	Low    float64   `csv:"low" json:"low"`
	Close  float64   `csv:"close" json:"close"`
	Volume float64   `csv:"volume" json:"volume"`
}

// Series is an ordered price series plus named numeric columns.
// The OHLCV columns are materialized at construction; indicator providers
// append additional columns before strategy evaluation. Timestamps are
// strictly increasing.
type Series struct {
	bars    []Bar
	columns map[string][]float64
}

// NewSeries constructs a Series from ordered bars. It returns an error if
// timestamps are not strictly increasing.
func NewSeries(bars []Bar) (*Series, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeNonIncreasingTimestamp,
				"bar %d timestamp %s is not after previous bar timestamp %s",
				i, bars[i].Time.Format(time.RFC3339), bars[i-1].Time.Format(time.RFC3339))
		}
	}

	s := &Series{
		bars:    bars,
		columns: make(map[string][]float64),
	}

	open := make([]float64, len(bars))
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	volume := make([]float64, len(bars))

	for i, bar := range bars {
		open[i] = bar.Open
		high[i] = bar.High
		low[i] = bar.Low
		closes[i] = bar.Close
		volume[i] = bar.Volume
	}

	s.columns[ColumnOpen] = open
	s.columns[ColumnHigh] = high
	s.columns[ColumnLow] = low
	s.columns[ColumnClose] = closes
	s.columns[ColumnVolume] = volume

	return s, nil
}

// Clone returns a copy of the series with an independent column map. Bars
// are shared; they are never mutated after construction. Indicator columns
// added to the clone do not appear on the receiver, so one series can back
// concurrent runs as long as each run works on its own clone.
func (s *Series) Clone() *Series {
	columns := make(map[string][]float64, len(s.columns))

	for name, values := range s.columns {
		copied := make([]float64, len(values))
		copy(copied, values)
		columns[name] = copied
	}

	return &Series{
		bars:    s.bars,
		columns: columns,
	}
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.bars)
}

// Bar returns the bar at index i.
func (s *Series) Bar(i int) Bar {
	return s.bars[i]
}

// Bars returns the underlying bars in timestamp order.
func (s *Series) Bars() []Bar {
	return s.bars
}

// Column returns the named column and whether it exists.
func (s *Series) Column(name string) ([]float64, bool) {
	values, ok := s.columns[name]

	return values, ok
}

// HasColumn reports whether the named column exists.
func (s *Series) HasColumn(name string) bool {
	_, ok := s.columns[name]

	return ok
}

// SetColumn adds or replaces a named column. The column must have one value
// per bar.
func (s *Series) SetColumn(name string, values []float64) error {
	if len(values) != len(s.bars) {
		return errors.Newf(errors.ErrCodeColumnLengthMismatch,
			"column %q has %d values but series has %d bars", name, len(values), len(s.bars))
	}

	s.columns[name] = values

	return nil
}

// ColumnNames returns all column names in sorted order.
func (s *Series) ColumnNames() []string {
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
