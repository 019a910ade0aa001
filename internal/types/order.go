package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// OrderType selects the execution price for fills.
type OrderType string

const (
	// OrderTypeMarket fills at the same bar's close.
	OrderTypeMarket OrderType = "market"
	// OrderTypeLimit fills at the next bar's open, falling back to the
	// current close when no next bar exists.
	OrderTypeLimit OrderType = "limit"
)

// ExecutionParams configures a simulation run.
type ExecutionParams struct {
	OrderType      OrderType `yaml:"order_type" json:"order_type" validate:"required,oneof=market limit"`
	InitialBalance float64   `yaml:"initial_balance" json:"initial_balance" validate:"required,gt=0"`
	PositionSize   float64   `yaml:"position_size" json:"position_size" validate:"required,gt=0"`
	// StopLoss is accepted for forward compatibility. The simulator does not
	// act on it.
	StopLoss optional.Option[float64] `yaml:"stop_loss" json:"stop_loss"`
	// TakeProfit is accepted for forward compatibility. The simulator does
	// not act on it.
	TakeProfit optional.Option[float64] `yaml:"take_profit" json:"take_profit"`
}

// UnmarshalYAML implements custom unmarshaling for ExecutionParams so that
// optional scalar fields decode into Option values.
func (p *ExecutionParams) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type params struct {
		OrderType      OrderType `yaml:"order_type"`
		InitialBalance float64   `yaml:"initial_balance"`
		PositionSize   float64   `yaml:"position_size"`
		StopLoss       *float64  `yaml:"stop_loss"`
		TakeProfit     *float64  `yaml:"take_profit"`
	}

	var raw params
	if err := unmarshal(&raw); err != nil {
		return err
	}

	p.OrderType = raw.OrderType
	p.InitialBalance = raw.InitialBalance
	p.PositionSize = raw.PositionSize

	if raw.StopLoss != nil {
		p.StopLoss = optional.Some(*raw.StopLoss)
	}

	if raw.TakeProfit != nil {
		p.TakeProfit = optional.Some(*raw.TakeProfit)
	}

	return nil
}

// Validate validates the ExecutionParams struct.
func (p *ExecutionParams) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidExecutionParams, "invalid execution params", err)
	}

	return nil
}
