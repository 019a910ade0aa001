// Package datasource loads OHLCV price series from CSV files.
package datasource

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// Accepted timestamp layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var requiredColumns = []string{
	"timestamp",
	types.ColumnOpen,
	types.ColumnHigh,
	types.ColumnLow,
	types.ColumnClose,
	types.ColumnVolume,
}

// flexTime parses any of the accepted timestamp layouts.
type flexTime struct {
	time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (t *flexTime) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			t.Time = parsed

			return nil
		}
	}

	return errors.Newf(errors.ErrCodeSeriesParseFailed, "unparseable timestamp %q", value)
}

type csvRecord struct {
	Timestamp flexTime `csv:"timestamp"`
	Open      float64  `csv:"open"`
	High      float64  `csv:"high"`
	Low       float64  `csv:"low"`
	Close     float64  `csv:"close"`
	Volume    float64  `csv:"volume"`
}

// LoadCSV reads an OHLCV series from r. The header is matched
// case-insensitively and must contain timestamp, open, high, low, close and
// volume columns. Extra columns are ignored.
func LoadCSV(r io.Reader) (*types.Series, error) {
	buffered := bufio.NewReader(r)

	header, err := buffered.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeSeriesParseFailed, "failed to read CSV header", err)
	}

	header = strings.ToLower(header)
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var records []csvRecord

	body := io.MultiReader(strings.NewReader(header), buffered)
	if err := gocsv.Unmarshal(body, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSeriesParseFailed, "failed to parse CSV rows", err)
	}

	bars := make([]types.Bar, len(records))
	for i, record := range records {
		bars[i] = types.Bar{
			Time:   record.Timestamp.Time,
			Open:   record.Open,
			High:   record.High,
			Low:    record.Low,
			Close:  record.Close,
			Volume: record.Volume,
		}
	}

	return types.NewSeries(bars)
}

// LoadCSVFile reads an OHLCV series from the file at path.
func LoadCSVFile(path string) (*types.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeSeriesParseFailed, err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	return LoadCSV(file)
}

func validateHeader(header string) error {
	fields, err := csv.NewReader(strings.NewReader(header)).Read()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSeriesParseFailed, "malformed CSV header", err)
	}

	present := make(map[string]bool, len(fields))
	for _, field := range fields {
		present[strings.TrimSpace(field)] = true
	}

	for _, column := range requiredColumns {
		if !present[column] {
			return errors.Newf(errors.ErrCodeMissingColumn, "CSV is missing required column %q", column)
		}
	}

	return nil
}
