package types

import "time"

// LedgerKind marks a ledger entry as an entry or exit event.
type LedgerKind string

const (
	LedgerKindEntry LedgerKind = "entry"
	LedgerKindExit  LedgerKind = "exit"
)

// LedgerEntry records a single realized trade event. PnL and Balance are
// populated on exit entries only.
type LedgerEntry struct {
	Kind      LedgerKind `yaml:"type" json:"type" csv:"type"`
	Price     float64    `yaml:"price" json:"price" csv:"price"`
	Timestamp time.Time  `yaml:"timestamp" json:"timestamp" csv:"timestamp"`
	PnL       float64    `yaml:"pnl,omitempty" json:"pnl,omitempty" csv:"pnl"`
	Balance   float64    `yaml:"balance,omitempty" json:"balance,omitempty" csv:"balance"`
}
