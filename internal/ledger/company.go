package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Company owns a cash account and the ships that spend from it.
type Company struct {
	Name    string
	Cash    *Account
	Capital *Account // owner equity, may run negative
}

// NewCompany creates a company and capitalizes its cash account at time 0.
func NewCompany(name string, capital decimal.Decimal) (*Company, error) {
	c := &Company{
		Name:    name,
		Cash:    NewAccount(name + " - Cash"),
		Capital: NewEquityAccount(name + " - Owner Capital"),
	}
	if capital.IsPositive() {
		if err := c.Capital.Transfer(0, c.Cash, capital, "Initial capitalization"); err != nil {
			return nil, fmt.Errorf("capitalize %s: %w", name, err)
		}
	}
	return c, nil
}

// Balance returns the cash balance.
func (c *Company) Balance() decimal.Decimal {
	return c.Cash.Balance()
}

func (c *Company) String() string {
	return fmt.Sprintf("Company(%s, %s)", c.Name, Cr(c.Balance()))
}
