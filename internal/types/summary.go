package types

import (
	"fmt"
	"os"

	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

// Summary aggregates the performance statistics of a single run. All ratio
// metrics resolve degenerate inputs (short or flat series) to 0 rather than
// erroring.
type Summary struct {
	// Count of completed (exit) trades.
	TotalTrades int `yaml:"total_trades" json:"total_trades"`
	// Realized profit and loss, final balance minus initial balance.
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl"`
	// Fraction of completed trades with positive pnl, as a percentage.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Peak-to-trough decline in currency units.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Peak-to-trough decline as a percentage of the running peak.
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	// Compound annual growth rate, as a percentage.
	CAGR float64 `yaml:"cagr" json:"cagr"`
	// Annualized risk-adjusted return ratios.
	Sharpe  float64 `yaml:"sharpe" json:"sharpe"`
	Sortino float64 `yaml:"sortino" json:"sortino"`
	Calmar  float64 `yaml:"calmar" json:"calmar"`
	// Annualized standard deviation of returns, as a percentage.
	Volatility float64 `yaml:"volatility" json:"volatility"`
	// Absolute value of the 5th percentile of returns, as a percentage.
	VaR95 float64 `yaml:"var_95" json:"var_95"`
	// Beta is present only when benchmark returns were supplied.
	Beta optional.Option[float64] `yaml:"beta" json:"beta"`
	// Balance after the last bar.
	FinalBalance float64 `yaml:"final_balance" json:"final_balance"`
}

// Result is the full output of one backtest run.
type Result struct {
	Trades      []LedgerEntry `yaml:"trades" json:"trades"`
	EquityCurve []float64     `yaml:"equity_curve" json:"equity_curve"`
	Summary     Summary       `yaml:"metrics" json:"metrics"`
}

// WriteSummary writes a performance summary to a YAML file.
func WriteSummary(path string, summary Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary to file: %w", err)
	}

	return nil
}
