// Package metrics derives risk and return statistics from an equity curve.
// Every function resolves degenerate inputs (fewer than two observations,
// zero variance, empty downside subsets) to 0 rather than returning an
// error, since short or flat series are expected outcomes of a run.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/alphaflow-lab/alphaflow/internal/types"
)

const (
	// DefaultPeriodsPerYear is the annualization factor for daily bars.
	DefaultPeriodsPerYear = 252.0
	// DefaultRiskFreeRate is the annual risk-free rate used when none is
	// configured.
	DefaultRiskFreeRate = 0.0
	// VaRConfidence is the loss quantile reported by ValueAtRisk.
	VaRConfidence = 0.05
)

// Returns computes bar-over-bar percentage returns of an equity curve. A
// zero previous balance contributes a zero return.
func Returns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(equity)-1)

	for i := 1; i < len(equity); i++ {
		prev := equity[i-1]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}

		returns = append(returns, (equity[i]-prev)/prev)
	}

	return returns
}

// CAGR computes the compound annual growth rate of the equity curve as a
// percentage. Series shorter than two points, non-positive starting values
// and non-finite results all yield 0.
func CAGR(equity []float64, periodsPerYear float64) float64 {
	if len(equity) < 2 {
		return 0
	}

	start := equity[0]
	end := equity[len(equity)-1]
	years := float64(len(equity)) / periodsPerYear

	if start <= 0 || years <= 0 {
		return 0
	}

	cagr := math.Pow(end/start, 1/years) - 1
	if math.IsNaN(cagr) || math.IsInf(cagr, 0) {
		return 0
	}

	return cagr * 100
}

// MaxDrawdown computes the worst peak-to-trough decline of the equity curve,
// both in currency units and as a percentage of the running peak.
func MaxDrawdown(equity []float64) (amount, pct float64) {
	if len(equity) == 0 {
		return 0, 0
	}

	peak := equity[0]

	for _, value := range equity {
		if value > peak {
			peak = value
		}

		drawdown := peak - value
		if drawdown > amount {
			amount = drawdown
		}

		if peak > 0 {
			if drawdownPct := drawdown / peak * 100; drawdownPct > pct {
				pct = drawdownPct
			}
		}
	}

	return amount, pct
}

// Volatility computes the annualized standard deviation of returns as a
// percentage.
func Volatility(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	_, std := stat.MeanStdDev(returns, nil)
	if math.IsNaN(std) || math.IsInf(std, 0) {
		return 0
	}

	return std * math.Sqrt(periodsPerYear) * 100
}

// Sharpe computes the annualized Sharpe ratio: mean excess return over the
// standard deviation of returns. Zero variance yields 0.
func Sharpe(returns []float64, riskFreeRate, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return 0
	}

	excessMean := mean - riskFreeRate/periodsPerYear

	return excessMean / std * math.Sqrt(periodsPerYear)
}

// Sortino computes the annualized Sortino ratio: mean excess return over the
// standard deviation of the negative-return subset. An empty or
// zero-deviation downside subset yields 0.
func Sortino(returns []float64, riskFreeRate, periodsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	downside := make([]float64, 0, len(returns))

	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	if len(downside) < 2 {
		return 0
	}

	_, downStd := stat.MeanStdDev(downside, nil)
	if downStd == 0 || math.IsNaN(downStd) || math.IsInf(downStd, 0) {
		return 0
	}

	excessMean := stat.Mean(returns, nil) - riskFreeRate/periodsPerYear

	return excessMean / downStd * math.Sqrt(periodsPerYear)
}

// Calmar computes CAGR (as a fraction) over the absolute maximum percentage
// drawdown. Zero drawdown yields 0.
func Calmar(equity []float64, periodsPerYear float64) float64 {
	cagrFraction := CAGR(equity, periodsPerYear) / 100

	_, drawdownPct := MaxDrawdown(equity)
	if drawdownPct == 0 {
		return 0
	}

	return cagrFraction / math.Abs(drawdownPct/100)
}

// ValueAtRisk computes the absolute value of the given loss quantile of the
// return distribution, as a percentage. It requires at least one return
// observation.
func ValueAtRisk(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	quantile := stat.Quantile(confidence, stat.Empirical, sorted, nil)

	return math.Abs(quantile) * 100
}

// Beta computes the sensitivity of strategy returns to benchmark returns:
// covariance over benchmark variance. When the series differ in length both
// are trimmed to the shorter length from the most recent end. Zero benchmark
// variance yields 0.
func Beta(strategyReturns, benchmarkReturns []float64) float64 {
	n := len(strategyReturns)
	if len(benchmarkReturns) < n {
		n = len(benchmarkReturns)
	}

	if n < 2 {
		return 0
	}

	strategy := strategyReturns[len(strategyReturns)-n:]
	benchmark := benchmarkReturns[len(benchmarkReturns)-n:]

	variance := stat.Variance(benchmark, nil)
	if variance == 0 || math.IsNaN(variance) || math.IsInf(variance, 0) {
		return 0
	}

	return stat.Covariance(strategy, benchmark, nil) / variance
}

// WinRate computes the fraction of completed (exit) trades with strictly
// positive pnl, as a percentage. No completed trades yields 0.
func WinRate(ledger []types.LedgerEntry) float64 {
	var total, wins int

	for _, entry := range ledger {
		if entry.Kind != types.LedgerKindExit {
			continue
		}

		total++

		if entry.PnL > 0 {
			wins++
		}
	}

	if total == 0 {
		return 0
	}

	return float64(wins) / float64(total) * 100
}
