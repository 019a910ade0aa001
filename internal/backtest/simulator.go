package backtest

import (
	"github.com/shopspring/decimal"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// positionState tracks whether the simulator currently holds a position.
type positionState int

const (
	stateFlat positionState = iota
	stateLong
)

// simulation is the raw outcome of one pass over the series.
type simulation struct {
	ledger          []types.LedgerEntry
	equityCurve     []float64
	finalBalance    float64
	totalPnL        float64
	maxDrawdown     float64
	completedTrades int
}

// fillPrice selects the execution price for a signal on bar i. Market orders
// fill at the same bar's close; limit orders fill at the next bar's open,
// falling back to the current close on the last bar.
func fillPrice(series *types.Series, i int, orderType types.OrderType) float64 {
	if orderType == types.OrderTypeLimit && i+1 < series.Len() {
		return series.Bar(i + 1).Open
	}

	return series.Bar(i).Close
}

// runSimulation walks the series once in timestamp order, opening a position
// on an entry signal while flat and closing it on an exit signal while long.
// Entry is evaluated only while flat and exit only while long, so at most
// one transition occurs per bar; an open position at the end of the series
// is left open. The balance is appended to the equity curve on every bar.
func runSimulation(series *types.Series, entrySignal, exitSignal []bool, params types.ExecutionParams) (*simulation, error) {
	if len(entrySignal) != series.Len() || len(exitSignal) != series.Len() {
		return nil, errors.Newf(errors.ErrCodeSignalAlignment,
			"entry signal has %d values and exit signal has %d, series has %d bars",
			len(entrySignal), len(exitSignal), series.Len())
	}

	initialBalance := decimal.NewFromFloat(params.InitialBalance)
	positionSize := decimal.NewFromFloat(params.PositionSize)

	balance := initialBalance
	state := stateFlat

	var entryPrice decimal.Decimal

	sim := &simulation{
		ledger:      make([]types.LedgerEntry, 0),
		equityCurve: make([]float64, 0, series.Len()),
	}

	peak := params.InitialBalance

	for i := 0; i < series.Len(); i++ {
		bar := series.Bar(i)

		switch state {
		case stateFlat:
			if entrySignal[i] {
				price := fillPrice(series, i, params.OrderType)
				entryPrice = decimal.NewFromFloat(price)
				state = stateLong

				sim.ledger = append(sim.ledger, types.LedgerEntry{
					Kind:      types.LedgerKindEntry,
					Price:     price,
					Timestamp: bar.Time,
				})
			}
		case stateLong:
			if exitSignal[i] {
				price := fillPrice(series, i, params.OrderType)
				exitPrice := decimal.NewFromFloat(price)
				pnl := exitPrice.Sub(entryPrice).Mul(positionSize)
				balance = balance.Add(pnl)
				state = stateFlat
				sim.completedTrades++

				pnlValue, _ := pnl.Float64()
				balanceValue, _ := balance.Float64()

				sim.ledger = append(sim.ledger, types.LedgerEntry{
					Kind:      types.LedgerKindExit,
					Price:     price,
					Timestamp: bar.Time,
					PnL:       pnlValue,
					Balance:   balanceValue,
				})
			}
		}

		balanceValue, _ := balance.Float64()
		sim.equityCurve = append(sim.equityCurve, balanceValue)

		if balanceValue > peak {
			peak = balanceValue
		}

		if drawdown := peak - balanceValue; drawdown > sim.maxDrawdown {
			sim.maxDrawdown = drawdown
		}
	}

	sim.finalBalance, _ = balance.Float64()
	sim.totalPnL, _ = balance.Sub(initialBalance).Float64()

	return sim, nil
}
