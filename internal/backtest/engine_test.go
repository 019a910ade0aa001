package backtest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

func TestEngineEvaluateCondition(t *testing.T) {
	series := buildSeries(t, []float64{99, 101, 98}, []float64{99, 101, 98})
	engine := NewEngine(EngineConfig{})

	signal, err := engine.EvaluateCondition(series, "close > 100")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, signal)
}

func TestEngineEvaluateLogic(t *testing.T) {
	engine := NewEngine(EngineConfig{})

	signal, err := engine.EvaluateLogic(map[string][]bool{
		"COND1": {true, true, false},
		"COND2": {true, false, false},
	}, "COND1 AND NOT COND2")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, signal)
}

func TestEngineRun(t *testing.T) {
	series := buildSeries(t, []float64{99, 101, 98}, []float64{99, 101, 98})
	engine := NewEngine(EngineConfig{})

	result, err := engine.Run(series, StrategyRequest{
		Logic: LogicSpec{
			Conditions: []string{"close > 100", "close < 100"},
			Entry:      "COND1",
			Exit:       "COND2",
		},
		Execution: marketParams(10000, 1),
	})
	require.NoError(t, err)

	// Exit fires on bar 0 while flat and is ignored; entry fills at bar 1's
	// close, exit at bar 2's close.
	require.Len(t, result.Trades, 2)
	assert.Equal(t, 101.0, result.Trades[0].Price)
	assert.Equal(t, 98.0, result.Trades[1].Price)
	assert.Equal(t, -3.0, result.Trades[1].PnL)
	assert.Equal(t, 9997.0, result.Summary.FinalBalance)
	assert.Equal(t, 1, result.Summary.TotalTrades)
}

func TestEngineRunWithIndicator(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	series := buildSeries(t, closes, closes)
	engine := NewEngine(EngineConfig{})

	result, err := engine.Run(series, StrategyRequest{
		Indicators: []IndicatorSpec{
			{Name: "ema", Params: map[string]any{"period": 5}},
		},
		Logic: LogicSpec{
			Conditions: []string{"close > ema_5"},
			Entry:      "COND1",
			Exit:       "NOT COND1",
		},
		Execution: marketParams(10000, 1),
	})
	require.NoError(t, err)

	// The indicator column lives on the run's own clone; the caller's series
	// stays untouched.
	assert.False(t, series.HasColumn("ema_5"))
	assert.Len(t, result.EquityCurve, series.Len())
}

func TestEngineRunConcurrentOnSharedSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	series := buildSeries(t, closes, closes)
	engine := NewEngine(EngineConfig{})

	request := StrategyRequest{
		Indicators: []IndicatorSpec{
			{Name: "ema", Params: map[string]any{"period": 5}},
		},
		Logic: LogicSpec{
			Conditions: []string{"close > ema_5"},
			Entry:      "COND1",
			Exit:       "NOT COND1",
		},
		Execution: marketParams(10000, 1),
	}

	const runs = 4

	results := make([]*types.Result, runs)
	errs := make([]error, runs)

	var wg sync.WaitGroup

	for i := 0; i < runs; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.Run(series, request)
		}(i)
	}

	wg.Wait()

	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Summary, results[i].Summary)
		assert.Equal(t, results[0].Trades, results[i].Trades)
	}

	assert.False(t, series.HasColumn("ema_5"))
}

func TestEngineRunCaseInsensitiveLogicNames(t *testing.T) {
	series := buildSeries(t, []float64{99, 101, 98}, []float64{99, 101, 98})
	engine := NewEngine(EngineConfig{})

	_, err := engine.Run(series, StrategyRequest{
		Logic: LogicSpec{
			Conditions: []string{"close > 100"},
			Entry:      "cond1",
			Exit:       "not cond1",
		},
		Execution: marketParams(10000, 1),
	})
	require.NoError(t, err)
}

func TestEngineRunUnknownIndicator(t *testing.T) {
	series := buildSeries(t, []float64{99, 101}, []float64{99, 101})
	engine := NewEngine(EngineConfig{})

	_, err := engine.Run(series, StrategyRequest{
		Indicators: []IndicatorSpec{{Name: "supertrend"}},
		Logic: LogicSpec{
			Conditions: []string{"close > 100"},
			Entry:      "COND1",
			Exit:       "NOT COND1",
		},
		Execution: marketParams(10000, 1),
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func TestEngineRunBadCondition(t *testing.T) {
	series := buildSeries(t, []float64{99, 101}, []float64{99, 101})
	engine := NewEngine(EngineConfig{})

	tests := []struct {
		name      string
		condition string
		code      errors.ErrorCode
	}{
		{name: "unknown column", condition: "ema_20 > ema_50", code: errors.ErrCodeUnknownColumn},
		{name: "syntax error", condition: "close >", code: errors.ErrCodeExpressionSyntax},
		{name: "no comparison", condition: "close + 1", code: errors.ErrCodeExpressionSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Run(series, StrategyRequest{
				Logic: LogicSpec{
					Conditions: []string{tt.condition},
					Entry:      "COND1",
					Exit:       "NOT COND1",
				},
				Execution: marketParams(10000, 1),
			})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code))
		})
	}
}

func TestEngineRunUnknownConditionName(t *testing.T) {
	series := buildSeries(t, []float64{99, 101}, []float64{99, 101})
	engine := NewEngine(EngineConfig{})

	_, err := engine.Run(series, StrategyRequest{
		Logic: LogicSpec{
			Conditions: []string{"close > 100"},
			Entry:      "COND1 AND COND3",
			Exit:       "NOT COND1",
		},
		Execution: marketParams(10000, 1),
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownCondition))
}

func TestEngineRunRequestValidation(t *testing.T) {
	series := buildSeries(t, []float64{99, 101}, []float64{99, 101})
	engine := NewEngine(EngineConfig{})

	tests := []struct {
		name    string
		request StrategyRequest
	}{
		{
			name: "no conditions",
			request: StrategyRequest{
				Logic:     LogicSpec{Entry: "COND1", Exit: "NOT COND1"},
				Execution: marketParams(10000, 1),
			},
		},
		{
			name: "missing entry",
			request: StrategyRequest{
				Logic:     LogicSpec{Conditions: []string{"close > 100"}, Exit: "COND1"},
				Execution: marketParams(10000, 1),
			},
		},
		{
			name: "missing exit",
			request: StrategyRequest{
				Logic:     LogicSpec{Conditions: []string{"close > 100"}, Entry: "COND1"},
				Execution: marketParams(10000, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Run(series, tt.request)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidParameter))
		})
	}
}

func TestEngineRunDoesNotMutateSignalsAcrossRuns(t *testing.T) {
	series := buildSeries(t, []float64{99, 101, 98}, []float64{99, 101, 98})
	engine := NewEngine(EngineConfig{})

	request := StrategyRequest{
		Logic: LogicSpec{
			Conditions: []string{"close > 100", "close < 100"},
			Entry:      "COND1",
			Exit:       "COND2",
		},
		Execution: marketParams(10000, 1),
	}

	first, err := engine.Run(series, request)
	require.NoError(t, err)

	second, err := engine.Run(series, request)
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Trades, second.Trades)
}
