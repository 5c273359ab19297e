package agents

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/ledger"
)

// BailoutMemo is the ledger memo of a patron bailout credit.
const BailoutMemo = "Patron bailout (Military/Specialized ship)"

// spend debits a mandatory expense. A patronized ship that cannot pay is
// bailed out once and retries; any other failure leaves the ship broke.
// It reports whether the debit was applied.
func (s *Starship) spend(env *Env, amount decimal.Decimal, memo, purpose string) bool {
	err := s.account.Debit(env.Now, amount, memo)
	if err == nil {
		return true
	}
	var short *ledger.InsufficientFundsError
	if errors.As(err, &short) && s.Class.Role.Patronized() && !s.Broke {
		if berr := s.bailout(env); berr != nil {
			slog.Error("bailout failed", "ship", s.Name, "error", berr)
		} else if err = s.account.Debit(env.Now, amount, memo); err == nil {
			return true
		}
	}
	s.goBroke(env, purpose, err)
	return false
}

func (s *Starship) bailout(env *Env) error {
	amount := env.Tuning.BailoutAmount
	if err := s.account.CreditFrom(env.Now, amount, BailoutMemo, "Patron"); err != nil {
		return fmt.Errorf("bailout %s: %w", s.Name, err)
	}
	s.Bailouts++
	slog.Info("patron bailout", "ship", s.Name, "role", s.Class.Role, "amount", amount.StringFixed(0))
	env.status(s, "patron bailout of "+ledger.Cr(amount))
	return nil
}

// goBroke freezes the ship in its current state.
func (s *Starship) goBroke(env *Env, purpose string, err error) {
	msg := "insufficient funds for " + purpose
	var short *ledger.InsufficientFundsError
	if errors.As(err, &short) {
		msg = fmt.Sprintf("%s: need %s, have %s", msg, ledger.Cr(short.Required), ledger.Cr(short.Available))
	} else if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	if s.Broke {
		slog.Debug("broke ship missed a payment", "ship", s.Name, "purpose", purpose)
		env.status(s, msg)
		return
	}
	s.Broke = true
	s.BrokeAt = env.Now
	s.BrokeReason = msg
	slog.Warn("ship broke", "ship", s.Name, "state", s.State, "t", env.Now, "reason", msg)
	env.status(s, msg+", ship is broke")
	if env.OnBroke != nil {
		env.OnBroke(s)
	}
}

// Payroll pays the crew's monthly salary. It runs on the first day of
// every month regardless of the ship's lifecycle state; a broke ship
// still attempts it, and the rejected debit is kept on the account.
func (s *Starship) Payroll(env *Env) {
	amount := s.Crew.Payroll()
	if !amount.IsPositive() {
		return
	}
	d := env.Calendar.Date(env.Now)
	memo := fmt.Sprintf("Crew payroll: %d crew, Month %d, %d", len(s.Crew), d.Month(), d.Year)
	if s.spend(env, amount, memo, "payroll") {
		env.status(s, "paid crew payroll "+ledger.Cr(amount))
	}
}

// maintain performs annual maintenance: the crew's share of the year's
// profit, then the maintenance charge, then downtime.
func (s *Starship) maintain(env *Env) float64 {
	year := env.Calendar.Year(env.Now)
	profit := s.Balance().Sub(s.LastYearBalance)
	note := ""
	if profit.IsPositive() {
		share := profit.Mul(env.Tuning.CrewProfitShare).Round(0)
		pct := env.Tuning.CrewProfitShare.Mul(decimal.NewFromInt(100)).StringFixed(0)
		memo := fmt.Sprintf("Crew profit share (%s%% of annual profit: %s)", pct, ledger.Cr(profit))
		if share.IsPositive() && !s.spend(env, share, memo, "crew profit share") {
			return 0
		}
		note = fmt.Sprintf("paid crew profit share: %s (%s%% of annual profit: %s), ", ledger.Cr(share), pct, ledger.Cr(profit))
	}

	cost := s.Class.MaintenanceCost()
	if cost.IsPositive() && !s.spend(env, cost, fmt.Sprintf("Annual maintenance (year %d)", year), "maintenance") {
		return 0
	}
	s.LastMaintenanceYear = year
	s.LastYearBalance = s.Balance()
	s.Maintenances++
	env.status(s, fmt.Sprintf("%sannual maintenance %s, down for %.0f days", note, ledger.Cr(cost), env.duration(StateMaintenance)))
	return env.duration(StateMaintenance)
}
