// Package pricing holds the position-sizing and risk math shared by the order
// draft, the position tracker and the CLI. Every function is pure: it reads
// its arguments, returns a new decimal, and never logs or retries. All money
// and quantity math stays in base-10 decimals so repeated round-trips through
// the draft do not accumulate binary rounding error.
package pricing

import (
	"github.com/shopspring/decimal"

	"futures-assist/internal/types"
)

var hundred = decimal.NewFromInt(100)

// TotalValue returns the leveraged exposure for a lot count:
// quantity * faceValue * leverage.
func TotalValue(quantity int64, faceValue decimal.Decimal, leverage int64) decimal.Decimal {
	if quantity <= 0 || faceValue.LessThanOrEqual(decimal.Zero) || leverage <= 0 {
		return decimal.Zero
	}
	return faceValue.Mul(decimal.NewFromInt(quantity)).Mul(decimal.NewFromInt(leverage))
}

// QuantityFromValue converts a leveraged total value into whole lots, rounded
// down so capital is never over-allocated. totalValue must already reflect the
// intended leveraged exposure; leverage is only validated here, not applied
// again. Returns 0 rather than an error when the contract spec is missing or
// degenerate (faceValue <= 0, leverage <= 0) — callers treat 0 as "cannot
// size yet".
func QuantityFromValue(totalValue, faceValue decimal.Decimal, leverage int64) int64 {
	if faceValue.LessThanOrEqual(decimal.Zero) || leverage <= 0 {
		return 0
	}
	if totalValue.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return totalValue.Div(faceValue).Floor().IntPart()
}

// MarginFromValue returns the collateral required to hold totalValue at the
// given leverage: totalValue / leverage.
func MarginFromValue(totalValue decimal.Decimal, leverage int64) (decimal.Decimal, error) {
	if leverage <= 0 {
		return decimal.Zero, divisionField("leverage")
	}
	return totalValue.Div(decimal.NewFromInt(leverage)), nil
}

// StopLossAmount returns the absolute monetary loss realised if the stop is
// hit: |stop - entry| * quantity * faceValue. The branch on direction keeps
// the raw difference sign-correct before the absolute value, matching the
// persisted buy/sell semantics.
func StopLossAmount(quantity int64, entryPrice, stopLossPrice, faceValue decimal.Decimal, direction types.Direction) decimal.Decimal {
	var diff decimal.Decimal
	if direction == types.DirectionLong {
		diff = stopLossPrice.Sub(entryPrice)
	} else {
		diff = entryPrice.Sub(stopLossPrice)
	}
	return diff.Mul(decimal.NewFromInt(quantity)).Mul(faceValue).Abs()
}

// StopLossPercentage expresses a stop-loss amount as a percentage of margin.
// The result is not clamped: a value above 100 means the stop would lose more
// than the posted margin, which is an advisory for the operator, not an error.
func StopLossPercentage(stopLossAmount, margin decimal.Decimal) (decimal.Decimal, error) {
	if margin.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, divisionField("margin")
	}
	return stopLossAmount.Div(margin).Mul(hundred), nil
}

// StopLossPrice back-solves the stop price from a margin percentage:
// amount = margin * pct / 100, priceDiff = amount / (quantity * faceValue),
// then entry -/+ priceDiff depending on direction.
func StopLossPrice(entryPrice, stopLossPercentage, margin decimal.Decimal, quantity int64, faceValue decimal.Decimal, direction types.Direction) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, divisionField("quantity")
	}
	if faceValue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, divisionField("face_value")
	}
	amount := margin.Mul(stopLossPercentage).Div(hundred)
	priceDiff := amount.Div(decimal.NewFromInt(quantity).Mul(faceValue))
	if direction == types.DirectionLong {
		return entryPrice.Sub(priceDiff), nil
	}
	return entryPrice.Add(priceDiff), nil
}

// StopLossPriceFromRatio is the simpler variant used during live-price
// recalculation: current * (1 -/+ pct/100). Percentages at or above 100 for a
// long yield a non-positive stop; that is a valid result the caller must still
// surface, not suppress.
func StopLossPriceFromRatio(currentPrice, stopLossPercentage decimal.Decimal, direction types.Direction) decimal.Decimal {
	ratio := stopLossPercentage.Div(hundred)
	if direction == types.DirectionLong {
		return currentPrice.Mul(decimal.NewFromInt(1).Sub(ratio))
	}
	return currentPrice.Mul(decimal.NewFromInt(1).Add(ratio))
}

// TakeProfitPriceDefault is the placeholder default target: a 100% gain for
// longs, and 0 for shorts meaning "no bounded default, operator must set one".
// Kept verbatim for compatibility with the existing order records; this is a
// placeholder policy, not a pricing model.
func TakeProfitPriceDefault(currentPrice decimal.Decimal, direction types.Direction) decimal.Decimal {
	if direction == types.DirectionLong {
		return currentPrice.Mul(decimal.NewFromInt(2))
	}
	return decimal.Zero
}

// FloatingPnL returns the unrealized profit (positive) or loss (negative) of
// an open position at the last traded price. Inputs are assumed pre-validated
// decimals; the function itself never fails.
func FloatingPnL(direction types.Direction, quantity int64, entryPrice, lastPrice decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(quantity)
	if direction == types.DirectionLong {
		return lastPrice.Sub(entryPrice).Mul(qty)
	}
	return entryPrice.Sub(lastPrice).Mul(qty)
}
