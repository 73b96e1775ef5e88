// Package draft owns the operator's in-progress order configuration. The
// aggregate replaces the old pattern of widget handlers re-reading and
// re-writing each other: every mutation funnels through one recompute pass
// that re-derives the quantity/margin/totalValue triad and the whole
// stop-loss/take-profit block atomically. A failed mutation leaves the draft
// exactly as it was.
package draft

import (
	"errors"

	"github.com/shopspring/decimal"

	"futures-assist/internal/pricing"
	"futures-assist/internal/types"
)

// Mode records which field the operator edited last; the other two members of
// the triad are always re-derived from it.
type Mode string

const (
	ModeQuantity Mode = "quantity"
	ModeMargin   Mode = "margin"
	ModeRisk     Mode = "risk"
)

var ErrNoContract = errors.New("contract not sizeable: missing or non-positive face value")

// Draft is a plain value; it is owned by exactly one Session at a time and is
// not safe for concurrent mutation on its own.
type Draft struct {
	Symbol    string
	FaceValue decimal.Decimal
	Direction types.Direction

	EntryPrice decimal.Decimal
	Leverage   int64

	Quantity   int64
	Margin     decimal.Decimal
	TotalValue decimal.Decimal

	StopLossPrice      decimal.Decimal
	StopLossAmount     decimal.Decimal
	StopLossPercentage decimal.Decimal

	TakeProfitPrice    decimal.Decimal
	TakeProfitAmount   decimal.Decimal
	TakeProfitDrawdown decimal.Decimal

	// RiskAmount is the budget consumed by the last ApplyRiskBudget call,
	// zero for quantity/margin driven drafts.
	RiskAmount decimal.Decimal

	Mode Mode
}

func New() Draft {
	return Draft{
		Direction: types.DirectionLong,
		Leverage:  1,
		Mode:      ModeQuantity,
	}
}

// SetContract binds the draft to a contract spec. A non-positive face value
// is rejected up front so sizing never silently divides by a broken spec.
func (d *Draft) SetContract(symbol string, faceValue decimal.Decimal) error {
	if faceValue.LessThanOrEqual(decimal.Zero) {
		return ErrNoContract
	}
	next := *d
	next.Symbol = symbol
	next.FaceValue = faceValue
	return d.commit(next)
}

func (d *Draft) SetDirection(dir types.Direction) error {
	if !dir.Valid() {
		return &pricing.InputError{Field: "direction", Err: pricing.ErrInvalidInput}
	}
	next := *d
	next.Direction = dir
	return d.commit(next)
}

func (d *Draft) SetEntryPrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return &pricing.InputError{Field: "entry_price", Err: pricing.ErrInvalidInput}
	}
	next := *d
	next.EntryPrice = price
	return d.commit(next)
}

func (d *Draft) SetLeverage(leverage int64) error {
	if leverage < 1 {
		return &pricing.InputError{Field: "leverage", Err: pricing.ErrInvalidInput}
	}
	next := *d
	next.Leverage = leverage
	return d.commit(next)
}

// SetQuantity makes the lot count the driving input.
func (d *Draft) SetQuantity(quantity int64) error {
	if quantity < 0 {
		return &pricing.InputError{Field: "quantity", Err: pricing.ErrInvalidInput}
	}
	next := *d
	next.Quantity = quantity
	next.Mode = ModeQuantity
	next.RiskAmount = decimal.Zero
	return d.commit(next)
}

// SetMargin makes posted margin the driving input.
func (d *Draft) SetMargin(margin decimal.Decimal) error {
	if margin.IsNegative() {
		return &pricing.InputError{Field: "margin", Err: pricing.ErrInvalidInput}
	}
	next := *d
	next.Margin = margin
	next.Mode = ModeMargin
	next.RiskAmount = decimal.Zero
	return d.commit(next)
}

// SetStopLossPrice keeps the explicit price and clears the percentage as the
// stop-loss driver; the percentage is re-derived in recompute.
func (d *Draft) SetStopLossPrice(price decimal.Decimal) error {
	next := *d
	next.StopLossPrice = price
	next.StopLossPercentage = decimal.Zero
	return d.commit(next)
}

// SetStopLossPercentage drives the stop block from a percentage of margin.
func (d *Draft) SetStopLossPercentage(pct decimal.Decimal) error {
	if pct.LessThanOrEqual(decimal.Zero) {
		return &pricing.InputError{Field: "stop_loss_percentage", Err: pricing.ErrInvalidInput}
	}
	next := *d
	next.StopLossPercentage = pct
	next.StopLossPrice = decimal.Zero
	return d.commit(next)
}

func (d *Draft) SetTakeProfitPrice(price decimal.Decimal) error {
	next := *d
	next.TakeProfitPrice = price
	return d.commit(next)
}

func (d *Draft) SetTakeProfitDrawdown(pct decimal.Decimal) error {
	if pct.IsNegative() {
		return &pricing.InputError{Field: "take_profit_drawdown", Err: pricing.ErrInvalidInput}
	}
	next := *d
	next.TakeProfitDrawdown = pct
	return d.commit(next)
}

// ApplyRiskBudget sizes the draft from an account risk budget: the configured
// maximum single-trade risk scaled by a multiplier (0.5x, 1x, 2x), converted
// to exposure through the stop-loss percentage. Each precondition fails with
// its own field error; nothing is silently zeroed.
func (d *Draft) ApplyRiskBudget(maxSingleRisk, multiplier, stopLossPct decimal.Decimal) error {
	if stopLossPct.LessThanOrEqual(decimal.Zero) {
		return &pricing.InputError{Field: "stop_loss_percentage", Err: pricing.ErrDivisionInvalid}
	}
	if d.Leverage <= 0 {
		return &pricing.InputError{Field: "leverage", Err: pricing.ErrDivisionInvalid}
	}
	if d.FaceValue.LessThanOrEqual(decimal.Zero) {
		return &pricing.InputError{Field: "face_value", Err: pricing.ErrDivisionInvalid}
	}
	if maxSingleRisk.LessThanOrEqual(decimal.Zero) || multiplier.LessThanOrEqual(decimal.Zero) {
		return &pricing.InputError{Field: "risk_budget", Err: pricing.ErrInvalidInput}
	}

	next := *d
	next.RiskAmount = maxSingleRisk.Mul(multiplier)
	next.TotalValue = next.RiskAmount.Div(stopLossPct.Div(decimal.NewFromInt(100)))
	next.StopLossPercentage = stopLossPct
	next.StopLossPrice = decimal.Zero
	next.Mode = ModeRisk
	return d.commit(next)
}

// commit recomputes the scratch copy and only then replaces the receiver, so
// a failed pass cannot leave the triad half-updated.
func (d *Draft) commit(next Draft) error {
	if err := next.recompute(); err != nil {
		return err
	}
	*d = next
	return nil
}

// recompute is the single entry point that re-derives every dependent field
// from the current driving input. Safe to call from any scheduling model; it
// touches nothing outside the receiver.
func (d *Draft) recompute() error {
	switch d.Mode {
	case ModeMargin:
		d.TotalValue = d.Margin.Mul(decimal.NewFromInt(d.Leverage))
		d.Quantity = pricing.QuantityFromValue(d.TotalValue, d.FaceValue, d.Leverage)
	case ModeRisk:
		margin, err := pricing.MarginFromValue(d.TotalValue, d.Leverage)
		if err != nil {
			return err
		}
		d.Margin = margin
		d.Quantity = pricing.QuantityFromValue(d.TotalValue, d.FaceValue, d.Leverage)
	default:
		d.TotalValue = pricing.TotalValue(d.Quantity, d.FaceValue, d.Leverage)
		margin, err := pricing.MarginFromValue(d.TotalValue, d.Leverage)
		if err != nil {
			return err
		}
		d.Margin = margin
	}

	if err := d.recomputeStopLoss(); err != nil {
		return err
	}
	d.recomputeTakeProfit()
	return nil
}

func (d *Draft) recomputeStopLoss() error {
	switch {
	case d.StopLossPrice.GreaterThan(decimal.Zero):
		d.StopLossAmount = pricing.StopLossAmount(d.Quantity, d.EntryPrice, d.StopLossPrice, d.FaceValue, d.Direction)
		if d.Margin.GreaterThan(decimal.Zero) {
			pct, err := pricing.StopLossPercentage(d.StopLossAmount, d.Margin)
			if err != nil {
				return err
			}
			d.StopLossPercentage = pct
		}
	case d.StopLossPercentage.GreaterThan(decimal.Zero):
		d.StopLossAmount = d.Margin.Mul(d.StopLossPercentage).Div(decimal.NewFromInt(100))
		if d.Quantity > 0 && d.FaceValue.GreaterThan(decimal.Zero) && d.EntryPrice.GreaterThan(decimal.Zero) {
			price, err := pricing.StopLossPrice(d.EntryPrice, d.StopLossPercentage, d.Margin, d.Quantity, d.FaceValue, d.Direction)
			if err != nil {
				return err
			}
			d.StopLossPrice = price
		}
	default:
		d.StopLossAmount = decimal.Zero
	}
	return nil
}

func (d *Draft) recomputeTakeProfit() {
	if d.TakeProfitPrice.IsZero() && d.EntryPrice.GreaterThan(decimal.Zero) {
		d.TakeProfitPrice = pricing.TakeProfitPriceDefault(d.EntryPrice, d.Direction)
	}
	if d.TakeProfitPrice.GreaterThan(decimal.Zero) && d.Quantity > 0 {
		// Mirrors the stop-loss amount: price distance scaled by lots and face
		// value, positive when the target is on the profitable side.
		var diff decimal.Decimal
		if d.Direction == types.DirectionLong {
			diff = d.TakeProfitPrice.Sub(d.EntryPrice)
		} else {
			diff = d.EntryPrice.Sub(d.TakeProfitPrice)
		}
		d.TakeProfitAmount = diff.Mul(decimal.NewFromInt(d.Quantity)).Mul(d.FaceValue)
	} else {
		d.TakeProfitAmount = decimal.Zero
	}
}

// Sizeable reports whether the draft has a usable contract spec.
func (d *Draft) Sizeable() bool {
	return d.FaceValue.GreaterThan(decimal.Zero)
}

// Snapshot returns a value copy for hand-off to submission. The copy is
// internally consistent by construction; callers own it outright.
func (d *Draft) Snapshot() Draft {
	return *d
}
