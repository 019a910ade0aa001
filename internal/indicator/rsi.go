package indicator

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// RSI appends a relative strength index column named "rsi_<period>".
type RSI struct{}

// NewRSI creates a new RSI indicator provider.
func NewRSI() Indicator {
	return &RSI{}
}

// Name returns the name of the indicator.
func (r *RSI) Name() Type {
	return TypeRSI
}

// Apply computes the RSI of the close column. Parameters: period (int,
// default 14).
func (r *RSI) Apply(series *types.Series, params map[string]any) error {
	period, err := intParam(params, "period", 14)
	if err != nil {
		return err
	}

	if period < 2 {
		return errors.Newf(errors.ErrCodeInvalidIndicatorParams,
			"rsi period must be at least 2, got %d", period)
	}

	if series.Len() < period+1 {
		return errors.Newf(errors.ErrCodeInvalidIndicatorParams,
			"rsi period %d requires at least %d bars, series has %d", period, period+1, series.Len())
	}

	values := talib.Rsi(closeColumn(series), period)

	return series.SetColumn(fmt.Sprintf("rsi_%d", period), values)
}
