package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaflow-lab/alphaflow/internal/types"
)

const delta = 1e-9

func TestReturns(t *testing.T) {
	returns := Returns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.1, returns[0], delta)
	assert.InDelta(t, -0.1, returns[1], delta)
}

func TestReturnsShortSeries(t *testing.T) {
	assert.Nil(t, Returns(nil))
	assert.Nil(t, Returns([]float64{100}))
}

func TestReturnsZeroPrevious(t *testing.T) {
	returns := Returns([]float64{0, 100})
	require.Len(t, returns, 1)
	assert.Equal(t, 0.0, returns[0])
}

func TestCAGR(t *testing.T) {
	// Two periods at one period per year is two years; 21% total growth
	// compounds to 10% per year.
	got := CAGR([]float64{100, 121}, 1)
	assert.InDelta(t, 10.0, got, 1e-6)
}

func TestCAGRDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, CAGR(nil, DefaultPeriodsPerYear))
	assert.Equal(t, 0.0, CAGR([]float64{100}, DefaultPeriodsPerYear))
	assert.Equal(t, 0.0, CAGR([]float64{0, 100}, DefaultPeriodsPerYear))
	assert.Equal(t, 0.0, CAGR([]float64{-100, 100}, DefaultPeriodsPerYear))
	// Negative terminal value would produce a non-finite power.
	assert.Equal(t, 0.0, CAGR([]float64{100, -50}, 1))
}

func TestMaxDrawdown(t *testing.T) {
	amount, pct := MaxDrawdown([]float64{100, 120, 90, 100})
	assert.InDelta(t, 30.0, amount, delta)
	assert.InDelta(t, 25.0, pct, delta)
}

func TestMaxDrawdownMonotonic(t *testing.T) {
	amount, pct := MaxDrawdown([]float64{100, 110, 120})
	assert.Equal(t, 0.0, amount)
	assert.Equal(t, 0.0, pct)
}

func TestMaxDrawdownEmpty(t *testing.T) {
	amount, pct := MaxDrawdown(nil)
	assert.Equal(t, 0.0, amount)
	assert.Equal(t, 0.0, pct)
}

func TestVolatility(t *testing.T) {
	// Sample standard deviation of {0.01, 0.02, 0.03} is 0.01.
	got := Volatility([]float64{0.01, 0.02, 0.03}, 252)
	assert.InDelta(t, 0.01*math.Sqrt(252)*100, got, delta)
}

func TestVolatilityDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, Volatility(nil, 252))
	assert.Equal(t, 0.0, Volatility([]float64{0.01}, 252))
}

func TestSharpe(t *testing.T) {
	got := Sharpe([]float64{0.01, 0.02, 0.03}, 0, 252)
	assert.InDelta(t, 0.02/0.01*math.Sqrt(252), got, 1e-6)
}

func TestSharpeWithRiskFreeRate(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.03}
	riskFree := 0.252 // 0.001 per period at 252 periods/year
	got := Sharpe(returns, riskFree, 252)
	assert.InDelta(t, (0.02-0.001)/0.01*math.Sqrt(252), got, 1e-6)
}

func TestSharpeZeroVariance(t *testing.T) {
	assert.Equal(t, 0.0, Sharpe([]float64{0.25, 0.25, 0.25}, 0, 252))
	assert.Equal(t, 0.0, Sharpe(nil, 0, 252))
	assert.Equal(t, 0.0, Sharpe([]float64{0.01}, 0, 252))
}

func TestSortino(t *testing.T) {
	returns := []float64{0.02, -0.01, -0.03, 0.04}
	// Downside subset {-0.01, -0.03} has sample std sqrt(0.0002).
	downStd := math.Sqrt(0.0002)
	mean := 0.005
	got := Sortino(returns, 0, 252)
	assert.InDelta(t, mean/downStd*math.Sqrt(252), got, 1e-6)
}

func TestSortinoDegenerate(t *testing.T) {
	// No negative returns.
	assert.Equal(t, 0.0, Sortino([]float64{0.01, 0.02}, 0, 252))
	// Single negative return has undefined sample deviation.
	assert.Equal(t, 0.0, Sortino([]float64{0.01, -0.02}, 0, 252))
	// Constant downside has zero deviation.
	assert.Equal(t, 0.0, Sortino([]float64{-0.25, -0.25, -0.25}, 0, 252))
	assert.Equal(t, 0.0, Sortino(nil, 0, 252))
}

func TestCalmar(t *testing.T) {
	// 21% growth over two years with one drawdown.
	equity := []float64{100, 80, 121}
	cagrFraction := CAGR(equity, 1.5) / 100
	_, ddPct := MaxDrawdown(equity)
	require.Greater(t, ddPct, 0.0)

	got := Calmar(equity, 1.5)
	assert.InDelta(t, cagrFraction/(ddPct/100), got, 1e-9)
}

func TestCalmarZeroDrawdown(t *testing.T) {
	assert.Equal(t, 0.0, Calmar([]float64{100, 110, 121}, 252))
	assert.Equal(t, 0.0, Calmar(nil, 252))
}

func TestValueAtRisk(t *testing.T) {
	returns := []float64{-0.05, -0.02, 0.01, 0.03}
	got := ValueAtRisk(returns, VaRConfidence)
	assert.InDelta(t, 5.0, got, delta)
}

func TestValueAtRiskSingleObservation(t *testing.T) {
	got := ValueAtRisk([]float64{-0.02}, VaRConfidence)
	assert.InDelta(t, 2.0, got, delta)
}

func TestValueAtRiskEmpty(t *testing.T) {
	assert.Equal(t, 0.0, ValueAtRisk(nil, VaRConfidence))
}

func TestBeta(t *testing.T) {
	benchmark := []float64{0.01, -0.02, 0.03, -0.01}
	strategy := make([]float64, len(benchmark))

	for i, r := range benchmark {
		strategy[i] = 2 * r
	}

	got := Beta(strategy, benchmark)
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestBetaTrimsToMostRecent(t *testing.T) {
	// Strategy has two extra old observations; only the overlapping recent
	// window should be used.
	benchmark := []float64{0.01, -0.02, 0.03}
	strategy := []float64{0.9, -0.9, 0.01, -0.02, 0.03}

	got := Beta(strategy, benchmark)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestBetaDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, Beta(nil, nil))
	assert.Equal(t, 0.0, Beta([]float64{0.01}, []float64{0.01}))
	// Constant benchmark has zero variance.
	assert.Equal(t, 0.0, Beta([]float64{0.01, 0.02}, []float64{0.01, 0.01}))
}

func TestWinRate(t *testing.T) {
	ledger := []types.LedgerEntry{
		{Kind: types.LedgerKindEntry, Price: 100},
		{Kind: types.LedgerKindExit, Price: 110, PnL: 10},
		{Kind: types.LedgerKindEntry, Price: 110},
		{Kind: types.LedgerKindExit, Price: 105, PnL: -5},
	}

	assert.InDelta(t, 50.0, WinRate(ledger), delta)
}

func TestWinRateNoTrades(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(nil))
	// Entry-only ledger has no completed trades.
	assert.Equal(t, 0.0, WinRate([]types.LedgerEntry{{Kind: types.LedgerKindEntry}}))
}

func TestWinRateZeroPnLIsNotAWin(t *testing.T) {
	ledger := []types.LedgerEntry{
		{Kind: types.LedgerKindExit, PnL: 0},
	}

	assert.Equal(t, 0.0, WinRate(ledger))
}

func TestConstantEquityCurveAllZero(t *testing.T) {
	equity := make([]float64, 10)
	for i := range equity {
		equity[i] = 10000
	}

	returns := Returns(equity)

	assert.Equal(t, 0.0, Sharpe(returns, 0, 252))
	assert.Equal(t, 0.0, Sortino(returns, 0, 252))
	assert.Equal(t, 0.0, Volatility(returns, 252))
	assert.Equal(t, 0.0, Calmar(equity, 252))

	amount, pct := MaxDrawdown(equity)
	assert.Equal(t, 0.0, amount)
	assert.Equal(t, 0.0, pct)
}
