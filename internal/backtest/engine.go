// Package backtest runs rule-based strategies against historical price
// series: condition evaluation, entry/exit logic, single-position trade
// simulation and performance metrics. Every run is a pure function of its
// inputs; nothing is shared between runs, so parameter sweeps can execute
// concurrently as long as each run receives its own series.
package backtest

import (
	"fmt"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/alphaflow-lab/alphaflow/internal/backtest/metrics"
	"github.com/alphaflow-lab/alphaflow/internal/indicator"
	"github.com/alphaflow-lab/alphaflow/internal/logger"
	"github.com/alphaflow-lab/alphaflow/internal/strategy/condition"
	"github.com/alphaflow-lab/alphaflow/internal/strategy/logic"
	"github.com/alphaflow-lab/alphaflow/internal/types"
)

// Engine evaluates strategies and simulates their execution.
type Engine struct {
	log            *logger.Logger
	registry       indicator.Registry
	periodsPerYear float64
	riskFreeRate   float64
}

// EngineConfig configures an Engine. Zero values fall back to defaults.
type EngineConfig struct {
	Logger         *logger.Logger
	Registry       indicator.Registry
	PeriodsPerYear float64
	RiskFreeRate   float64
}

// NewEngine creates a backtest engine.
func NewEngine(config EngineConfig) *Engine {
	log := config.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	registry := config.Registry
	if registry == nil {
		registry = indicator.NewDefaultRegistry()
	}

	periodsPerYear := config.PeriodsPerYear
	if periodsPerYear <= 0 {
		periodsPerYear = metrics.DefaultPeriodsPerYear
	}

	return &Engine{
		log:            log,
		registry:       registry,
		periodsPerYear: periodsPerYear,
		riskFreeRate:   config.RiskFreeRate,
	}
}

// EvaluateCondition evaluates a single comparison expression over the series
// into a per-bar boolean sequence.
func (e *Engine) EvaluateCondition(series *types.Series, expr string) ([]bool, error) {
	return condition.Evaluate(series, expr)
}

// EvaluateLogic combines named condition sequences with AND/OR/NOT into one
// boolean sequence.
func (e *Engine) EvaluateLogic(conditions map[string][]bool, expr string) ([]bool, error) {
	return logic.Evaluate(conditions, expr)
}

// Simulate walks the series once with the given entry/exit signals and
// execution parameters and returns the trade ledger, equity curve and
// performance summary.
func (e *Engine) Simulate(
	series *types.Series,
	entrySignal, exitSignal []bool,
	params types.ExecutionParams,
	benchmarkReturns optional.Option[[]float64],
) (*types.Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sim, err := runSimulation(series, entrySignal, exitSignal, params)
	if err != nil {
		return nil, err
	}

	e.log.Debug("simulation finished",
		zap.Int("bars", series.Len()),
		zap.Int("completed_trades", sim.completedTrades),
		zap.Float64("final_balance", sim.finalBalance),
	)

	return &types.Result{
		Trades:      sim.ledger,
		EquityCurve: sim.equityCurve,
		Summary:     e.buildSummary(sim, benchmarkReturns),
	}, nil
}

// Run executes a full strategy request against the series: indicator
// augmentation, condition evaluation, logic combination, simulation and
// metrics. Validation failures abort the run before simulation starts.
// Indicators are applied to a per-run clone, so the caller's series is never
// mutated and the same series can back concurrent runs.
func (e *Engine) Run(series *types.Series, request StrategyRequest) (*types.Result, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	series = series.Clone()

	for _, spec := range request.Indicators {
		provider, err := e.registry.Get(indicator.Type(spec.Name))
		if err != nil {
			return nil, err
		}

		if err := provider.Apply(series, spec.Params); err != nil {
			return nil, err
		}
	}

	conditions := make(map[string][]bool, len(request.Logic.Conditions))

	for i, expr := range request.Logic.Conditions {
		sequence, err := condition.Evaluate(series, expr)
		if err != nil {
			return nil, err
		}

		conditions[fmt.Sprintf("COND%d", i+1)] = sequence
	}

	entrySignal, err := logic.Evaluate(conditions, request.Logic.Entry)
	if err != nil {
		return nil, err
	}

	exitSignal, err := logic.Evaluate(conditions, request.Logic.Exit)
	if err != nil {
		return nil, err
	}

	return e.Simulate(series, entrySignal, exitSignal, request.Execution, request.BenchmarkReturns)
}

// buildSummary derives the performance summary from a finished simulation.
func (e *Engine) buildSummary(sim *simulation, benchmarkReturns optional.Option[[]float64]) types.Summary {
	returns := metrics.Returns(sim.equityCurve)
	_, drawdownPct := metrics.MaxDrawdown(sim.equityCurve)

	summary := types.Summary{
		TotalTrades:    sim.completedTrades,
		TotalPnL:       sim.totalPnL,
		WinRate:        metrics.WinRate(sim.ledger),
		MaxDrawdown:    sim.maxDrawdown,
		MaxDrawdownPct: drawdownPct,
		CAGR:           metrics.CAGR(sim.equityCurve, e.periodsPerYear),
		Sharpe:         metrics.Sharpe(returns, e.riskFreeRate, e.periodsPerYear),
		Sortino:        metrics.Sortino(returns, e.riskFreeRate, e.periodsPerYear),
		Calmar:         metrics.Calmar(sim.equityCurve, e.periodsPerYear),
		Volatility:     metrics.Volatility(returns, e.periodsPerYear),
		VaR95:          metrics.ValueAtRisk(returns, metrics.VaRConfidence),
		FinalBalance:   sim.finalBalance,
	}

	if benchmarkReturns.IsSome() {
		summary.Beta = optional.Some(metrics.Beta(returns, benchmarkReturns.Unwrap()))
	}

	return summary
}
