package game

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"prize_wheel/internal/model"
)

// CreditMeter - player balance and the award bangup. Amounts are credits,
// fractions accumulate while a bangup ramps and are rounded on read.
type CreditMeter struct {
	balance  decimal.Decimal
	winnings decimal.Decimal

	// Remaining bangup target, zero when no bangup is running
	target   decimal.Decimal
	rate     decimal.Decimal
	duration time.Duration
}

func NewCreditMeter(start int64, bangupDuration time.Duration) *CreditMeter {
	return &CreditMeter{
		balance:  decimal.NewFromInt(start),
		duration: bangupDuration,
	}
}

func (m *CreditMeter) Balance() int64 {
	return m.balance.Round(0).IntPart()
}

// Winnings - credits added by the current or last bangup
func (m *CreditMeter) Winnings() int64 {
	return m.winnings.Round(0).IntPart()
}

func (m *CreditMeter) BangupActive() bool {
	return m.target.IsPositive()
}

// Deduct takes a wager from the balance
func (m *CreditMeter) Deduct(amount int64) error {
	a := decimal.NewFromInt(amount)
	if a.IsNegative() {
		return fmt.Errorf("negative wager %d", amount)
	}
	if m.balance.LessThan(a) {
		return fmt.Errorf("%w: balance %s, wager %d", model.ErrInsufficientBalance, m.balance.Round(0), amount)
	}
	m.balance = m.balance.Sub(a)
	return nil
}

// BangupTo starts ramping credits into the balance. It reports false when
// there is nothing to ramp.
func (m *CreditMeter) BangupTo(credits int64) bool {
	m.winnings = decimal.Zero
	m.target = decimal.Zero
	if credits <= 0 {
		return false
	}

	m.target = decimal.NewFromInt(credits)
	if m.duration <= 0 {
		m.add(m.target)
		m.target = decimal.Zero
		return false
	}
	m.rate = m.target.Div(decimal.NewFromFloat(m.duration.Seconds()))
	return true
}

// Update advances the bangup by dt and reports whether it finished on this call
func (m *CreditMeter) Update(dt time.Duration) bool {
	if !m.target.IsPositive() || dt <= 0 {
		return false
	}

	step := m.rate.Mul(decimal.NewFromFloat(dt.Seconds()))
	if m.winnings.Add(step).GreaterThanOrEqual(m.target) {
		m.add(m.target.Sub(m.winnings))
		m.target = decimal.Zero
		return true
	}
	m.add(step)
	return false
}

// CompleteBangup adds whatever is left of the bangup. Repeated calls do nothing.
func (m *CreditMeter) CompleteBangup() bool {
	if !m.target.IsPositive() {
		return false
	}
	m.add(m.target.Sub(m.winnings))
	m.target = decimal.Zero
	return true
}

func (m *CreditMeter) add(v decimal.Decimal) {
	m.balance = m.balance.Add(v)
	m.winnings = m.winnings.Add(v)
}
