package indicator

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// EMA appends an exponential moving average column named "ema_<period>".
type EMA struct{}

// NewEMA creates a new EMA indicator provider.
func NewEMA() Indicator {
	return &EMA{}
}

// Name returns the name of the indicator.
func (e *EMA) Name() Type {
	return TypeEMA
}

// Apply computes the EMA of the close column. Parameters: period (int,
// default 20).
func (e *EMA) Apply(series *types.Series, params map[string]any) error {
	period, err := intParam(params, "period", 20)
	if err != nil {
		return err
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidIndicatorParams,
			"ema period must be a positive integer, got %d", period)
	}

	if series.Len() < period {
		return errors.Newf(errors.ErrCodeInvalidIndicatorParams,
			"ema period %d exceeds series length %d", period, series.Len())
	}

	values := talib.Ema(closeColumn(series), period)

	return series.SetColumn(fmt.Sprintf("ema_%d", period), values)
}
