package indicator

import (
	talib "github.com/markcheno/go-talib"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// MACD appends "macd" and "macd_signal" columns.
type MACD struct{}

// NewMACD creates a new MACD indicator provider.
func NewMACD() Indicator {
	return &MACD{}
}

// Name returns the name of the indicator.
func (m *MACD) Name() Type {
	return TypeMACD
}

// Apply computes MACD and its signal line from the close column.
// Parameters: fast_period (default 12), slow_period (default 26),
// signal_period (default 9).
func (m *MACD) Apply(series *types.Series, params map[string]any) error {
	fastPeriod, err := intParam(params, "fast_period", 12)
	if err != nil {
		return err
	}

	slowPeriod, err := intParam(params, "slow_period", 26)
	if err != nil {
		return err
	}

	signalPeriod, err := intParam(params, "signal_period", 9)
	if err != nil {
		return err
	}

	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidIndicatorParams,
			"macd periods must be positive integers, got fast=%d slow=%d signal=%d",
			fastPeriod, slowPeriod, signalPeriod)
	}

	if fastPeriod >= slowPeriod {
		return errors.Newf(errors.ErrCodeInvalidIndicatorParams,
			"macd fast period %d must be smaller than slow period %d", fastPeriod, slowPeriod)
	}

	minBars := slowPeriod + signalPeriod
	if series.Len() < minBars {
		return errors.Newf(errors.ErrCodeInvalidIndicatorParams,
			"macd requires at least %d bars, series has %d", minBars, series.Len())
	}

	macd, signal, _ := talib.Macd(closeColumn(series), fastPeriod, slowPeriod, signalPeriod)

	if err := series.SetColumn("macd", macd); err != nil {
		return err
	}

	return series.SetColumn("macd_signal", signal)
}
