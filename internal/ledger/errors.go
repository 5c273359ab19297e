package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsufficientFundsError is returned when a debit exceeds the balance.
// Callers decide whether it means a bailout or a broke ship.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("Insufficient funds: need %s credits, have %s credits",
		Format(e.Required), Format(e.Available))
}

// Shortfall returns how much more the account would have needed.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

// InvalidTransferError is returned for malformed transfers.
type InvalidTransferError struct {
	Reason string
}

func (e *InvalidTransferError) Error() string {
	return "invalid transfer: " + e.Reason
}

// TemporalOrderError is returned when an entry would be dated before the
// account's previous entry.
type TemporalOrderError struct {
	Account string
	Time    float64
	Last    float64
}

func (e *TemporalOrderError) Error() string {
	return fmt.Sprintf("account %q: entry at day %.2f precedes last entry at day %.2f",
		e.Account, e.Time, e.Last)
}
