package condition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

func buildSeries(t *testing.T, closes []float64, columns map[string][]float64) *types.Series {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1,
		}
	}

	series, err := types.NewSeries(bars)
	require.NoError(t, err)

	for name, values := range columns {
		require.NoError(t, series.SetColumn(name, values))
	}

	return series
}

func TestEvaluateComparison(t *testing.T) {
	series := buildSeries(t, []float64{100, 105, 95}, map[string][]float64{
		"ema_20": {101, 104, 96},
		"ema_50": {99, 106, 97},
	})

	tests := []struct {
		name string
		expr string
		want []bool
	}{
		{
			name: "column vs column",
			expr: "ema_20 > ema_50",
			want: []bool{true, false, false},
		},
		{
			name: "column vs literal",
			expr: "close >= 100",
			want: []bool{true, true, false},
		},
		{
			name: "less than or equal",
			expr: "close <= 100",
			want: []bool{true, false, true},
		},
		{
			name: "equality",
			expr: "close == 105",
			want: []bool{false, true, false},
		},
		{
			name: "inequality",
			expr: "close != 105",
			want: []bool{true, false, true},
		},
		{
			name: "arithmetic on both sides",
			expr: "close - ema_20 > ema_50 - ema_20",
			want: []bool{true, false, false},
		},
		{
			name: "multiplication and parentheses",
			expr: "(close + 5) * 2 > 210",
			want: []bool{false, true, false},
		},
		{
			name: "unary minus",
			expr: "-close < -100",
			want: []bool{false, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(series, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	series := buildSeries(t, []float64{100, 105}, map[string][]float64{
		"spread": {0, 5},
	})

	// 100/0 = +Inf which is not < 30; 105/5 = 21 which is.
	got, err := Evaluate(series, "close / spread < 30")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, got)
}

func TestEvaluateUnknownColumn(t *testing.T) {
	series := buildSeries(t, []float64{100, 105}, map[string][]float64{
		"ema_20": {100, 101},
	})

	_, err := Evaluate(series, "ema_20 > ema_50")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownColumn))
	assert.Contains(t, err.Error(), "ema_50")
}

func TestEvaluateEmptySeries(t *testing.T) {
	series := buildSeries(t, nil, nil)

	got, err := Evaluate(series, "close > 100")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "empty expression", expr: ""},
		{name: "no comparison", expr: "close + 1"},
		{name: "two comparisons", expr: "close > 1 > 2"},
		{name: "single equals", expr: "close = 100"},
		{name: "lone exclamation", expr: "close ! 100"},
		{name: "unbalanced parens", expr: "(close > 100"},
		{name: "trailing operator", expr: "close > 100 +"},
		{name: "function call", expr: "max(close) > 100"},
		{name: "malformed number", expr: "close > 1.2.3"},
		{name: "unexpected character", expr: "close > 100; drop()"},
		{name: "lone dot", expr: "close > ."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeExpressionSyntax))
		})
	}
}

func TestParseCollectsColumns(t *testing.T) {
	cond, err := Parse("ema_20 - ema_50 > rsi_14 / 2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ema_20", "ema_50", "rsi_14"}, cond.Columns())
}

func TestEvaluateIsPure(t *testing.T) {
	series := buildSeries(t, []float64{100, 105, 95}, nil)

	first, err := Evaluate(series, "close > 100")
	require.NoError(t, err)

	second, err := Evaluate(series, "close > 100")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
