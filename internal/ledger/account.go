// Package ledger provides the append-only accounts that record every credit
// movement in the simulation. An account's balance is always the signed sum
// of its entries; entries are never edited or removed.
package ledger

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned when a credit or debit is given a negative amount.
var ErrNegativeAmount = errors.New("amount must not be negative")

// Entry is one line of an account's history.
type Entry struct {
	ID           uuid.UUID       `json:"id"`
	Account      string          `json:"account"`
	Time         float64         `json:"time"` // simulation days
	Amount       decimal.Decimal `json:"amount"` // negative for debits
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Memo         string          `json:"memo"`
	Counterparty string          `json:"counterparty,omitempty"`
}

// Rejection records a debit that was attempted but not applied.
// Rejections are diagnostics only and never touch the balance.
type Rejection struct {
	Time      float64         `json:"time"`
	Amount    decimal.Decimal `json:"amount"`
	Available decimal.Decimal `json:"available"`
	Memo      string          `json:"memo"`
}

// Account is an append-only ledger with a running balance.
type Account struct {
	Name string

	// AllowOverdraft lets the balance go negative. Used for equity
	// accounts such as owner capital.
	AllowOverdraft bool

	mu         sync.Mutex
	rank       atomic.Uint64 // lock order, assigned on first transfer
	balance    decimal.Decimal
	lastTime   float64
	entries    []Entry
	rejections []Rejection
}

var accountRanks atomic.Uint64

// NewAccount creates an empty account.
func NewAccount(name string) *Account {
	return &Account{Name: name}
}

// NewEquityAccount creates an account that may carry a negative balance.
func NewEquityAccount(name string) *Account {
	return &Account{Name: name, AllowOverdraft: true}
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// LastTime returns the time of the most recent entry (0 for an empty account).
func (a *Account) LastTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastTime
}

// Entries returns a copy of the account history in append order.
func (a *Account) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of entries.
func (a *Account) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Rejections returns a copy of the rejected debits.
func (a *Account) Rejections() []Rejection {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Rejection, len(a.rejections))
	copy(out, a.rejections)
	return out
}

// Post appends a signed entry. It is the only path that changes the balance.
// A negative amount larger than the balance fails with *InsufficientFundsError
// unless the account allows overdraft.
func (a *Account) Post(time float64, amount decimal.Decimal, memo, counterparty string) (Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkLocked(time, amount, memo); err != nil {
		return Entry{}, err
	}
	return a.appendLocked(time, amount, memo, counterparty), nil
}

// Credit adds a non-negative amount.
func (a *Account) Credit(time float64, amount decimal.Decimal, memo string) error {
	return a.CreditFrom(time, amount, memo, "")
}

// CreditFrom adds a non-negative amount and names where it came from.
func (a *Account) CreditFrom(time float64, amount decimal.Decimal, memo, counterparty string) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	_, err := a.Post(time, amount, memo, counterparty)
	return err
}

// Debit removes a non-negative amount.
func (a *Account) Debit(time float64, amount decimal.Decimal, memo string) error {
	return a.DebitTo(time, amount, memo, "")
}

// DebitTo removes a non-negative amount and names where it went.
func (a *Account) DebitTo(time float64, amount decimal.Decimal, memo, counterparty string) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	_, err := a.Post(time, amount.Neg(), memo, counterparty)
	return err
}

// Transfer moves amount from a to other. Both entries are appended under
// both account locks, so no observer sees only one side.
func (a *Account) Transfer(time float64, other *Account, amount decimal.Decimal, memo string) error {
	if other == nil || other == a {
		return &InvalidTransferError{Reason: "cannot transfer to the same account"}
	}
	if !amount.IsPositive() {
		return &InvalidTransferError{Reason: "transfer amount must be positive"}
	}

	// Lock in rank order so opposing transfers cannot deadlock, even
	// between accounts that share a name.
	first, second := a, other
	if second.lockRank() < first.lockRank() {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if err := a.checkLocked(time, amount.Neg(), memo); err != nil {
		return err
	}
	if err := other.checkLocked(time, amount, memo); err != nil {
		return err
	}
	a.appendLocked(time, amount.Neg(), memo, other.Name)
	other.appendLocked(time, amount, memo, a.Name)
	return nil
}

func (a *Account) lockRank() uint64 {
	if r := a.rank.Load(); r != 0 {
		return r
	}
	a.rank.CompareAndSwap(0, accountRanks.Add(1))
	return a.rank.Load()
}

func (a *Account) checkLocked(time float64, amount decimal.Decimal, memo string) error {
	if time < a.lastTime {
		return &TemporalOrderError{Account: a.Name, Time: time, Last: a.lastTime}
	}
	if amount.IsNegative() && !a.AllowOverdraft {
		need := amount.Neg()
		if need.GreaterThan(a.balance) {
			a.rejections = append(a.rejections, Rejection{
				Time:      time,
				Amount:    need,
				Available: a.balance,
				Memo:      memo,
			})
			return &InsufficientFundsError{Required: need, Available: a.balance}
		}
	}
	return nil
}

func (a *Account) appendLocked(time float64, amount decimal.Decimal, memo, counterparty string) Entry {
	a.balance = a.balance.Add(amount)
	a.lastTime = time
	e := Entry{
		ID:           uuid.New(),
		Account:      a.Name,
		Time:         time,
		Amount:       amount,
		BalanceAfter: a.balance,
		Memo:         memo,
		Counterparty: counterparty,
	}
	a.entries = append(a.entries, e)
	return e
}
