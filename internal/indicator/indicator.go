// Package indicator augments a price series with derived technical columns.
// Providers are looked up by name in a registry and append one or more
// numeric columns that strategy conditions can then reference.
package indicator

import (
	"math"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// Type identifies an indicator provider.
type Type string

const (
	TypeEMA  Type = "ema"
	TypeRSI  Type = "rsi"
	TypeMACD Type = "macd"
)

// Indicator computes derived columns for a price series.
type Indicator interface {
	// Name returns the name of the indicator.
	Name() Type
	// Apply computes the indicator from the given parameters and appends
	// its columns to the series.
	Apply(series *types.Series, params map[string]any) error
}

// intParam extracts an integer parameter, accepting the numeric types
// produced by JSON and YAML decoding. A missing key yields the fallback.
func intParam(params map[string]any, key string, fallback int) (int, error) {
	value, ok := params[key]
	if !ok {
		return fallback, nil
	}

	switch n := value.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, errors.Newf(errors.ErrCodeInvalidIndicatorParams,
				"parameter %q must be an integer, got %v", key, n)
		}

		return int(n), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidIndicatorParams,
			"parameter %q must be an integer, got %T", key, value)
	}
}

// closeColumn returns the close column of the series.
func closeColumn(series *types.Series) []float64 {
	closes, _ := series.Column(types.ColumnClose)

	return closes
}
