// Package condition evaluates comparison expressions over named series
// columns into per-bar boolean sequences. The grammar is closed by design:
// only column references, numeric literals, arithmetic and a single
// comparison are accepted, so user-supplied strategy text can never execute
// arbitrary code.
package condition

import (
	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// Evaluate parses the expression and evaluates it pointwise over the series,
// producing one boolean per bar.
func Evaluate(series *types.Series, expr string) ([]bool, error) {
	cond, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	return cond.Evaluate(series)
}

// Evaluate evaluates a parsed condition against a series. Every referenced
// column must exist on the series.
func (c *Condition) Evaluate(series *types.Series) ([]bool, error) {
	columns := make(map[string][]float64, len(c.columns))

	for _, name := range c.columns {
		values, ok := series.Column(name)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeUnknownColumn,
				"unknown column %q, available columns: %v", name, series.ColumnNames())
		}

		columns[name] = values
	}

	result := make([]bool, series.Len())
	for i := range result {
		left := c.left.eval(columns, i)
		right := c.right.eval(columns, i)
		result[i] = compare(c.op, left, right)
	}

	return result, nil
}

// compare applies the comparison operator. NaN operands compare false for
// every operator except !=, matching IEEE 754 semantics.
func compare(op tokenKind, left, right float64) bool {
	switch op {
	case tokenLT:
		return left < right
	case tokenGT:
		return left > right
	case tokenLE:
		return left <= right
	case tokenGE:
		return left >= right
	case tokenEQ:
		return left == right
	default:
		return left != right
	}
}
