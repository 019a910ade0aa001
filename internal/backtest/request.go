package backtest

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// IndicatorSpec names an indicator provider and its parameters.
type IndicatorSpec struct {
	Name   string         `yaml:"name" json:"name" validate:"required"`
	Params map[string]any `yaml:"params" json:"params"`
}

// LogicSpec holds the condition expressions and the entry/exit logic
// combining them. Conditions are named COND1..CONDn by position.
type LogicSpec struct {
	Conditions []string `yaml:"conditions" json:"conditions" validate:"required,min=1,dive,required"`
	Entry      string   `yaml:"entry" json:"entry" validate:"required"`
	Exit       string   `yaml:"exit" json:"exit" validate:"required"`
}

// StrategyRequest is the declarative description of one backtest run.
type StrategyRequest struct {
	Indicators []IndicatorSpec       `yaml:"indicators" json:"indicators" validate:"dive"`
	Logic      LogicSpec             `yaml:"logic" json:"logic" validate:"required"`
	Execution  types.ExecutionParams `yaml:"execution" json:"execution" validate:"required"`
	// BenchmarkReturns enables beta computation when present.
	BenchmarkReturns optional.Option[[]float64] `yaml:"benchmark_returns" json:"benchmark_returns"`
}

// UnmarshalYAML implements custom unmarshaling for StrategyRequest so that
// the optional benchmark sequence decodes into an Option value.
func (r *StrategyRequest) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type request struct {
		Indicators       []IndicatorSpec       `yaml:"indicators"`
		Logic            LogicSpec             `yaml:"logic"`
		Execution        types.ExecutionParams `yaml:"execution"`
		BenchmarkReturns []float64             `yaml:"benchmark_returns"`
	}

	var raw request
	if err := unmarshal(&raw); err != nil {
		return err
	}

	r.Indicators = raw.Indicators
	r.Logic = raw.Logic
	r.Execution = raw.Execution

	if raw.BenchmarkReturns != nil {
		r.BenchmarkReturns = optional.Some(raw.BenchmarkReturns)
	}

	return nil
}

// Validate validates the StrategyRequest struct.
func (r *StrategyRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid strategy request", err)
	}

	return r.Execution.Validate()
}
