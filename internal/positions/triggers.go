package positions

import (
	"github.com/shopspring/decimal"

	"futures-assist/internal/model"
	"futures-assist/internal/pricing"
	"futures-assist/internal/types"
)

var hundred = decimal.NewFromInt(100)

// TickState is the result of folding one price tick into a position: the
// refreshed mark-to-market figures and, when an exit condition fired, the
// close type to apply.
type TickState struct {
	LastPrice         decimal.Decimal
	FloatingPnL       decimal.Decimal
	HighestPrice      decimal.Decimal
	MaxFloatingProfit decimal.Decimal
	Close             bool
	CloseType         types.CloseType
}

// evaluateTick recomputes floating P&L, advances the best-price watermarks and
// checks stop-loss and take-profit conditions in that order. Stop-loss wins
// when both would fire on the same tick.
func evaluateTick(p *model.Position, strat *model.TakeProfitStrategy, last decimal.Decimal) TickState {
	st := TickState{
		LastPrice:   last,
		FloatingPnL: pricing.FloatingPnL(p.Direction, p.Quantity, p.EntryPrice, last),
	}

	st.HighestPrice = last
	if p.HighestPrice != nil {
		if betterPrice(p.Direction, *p.HighestPrice, last) {
			st.HighestPrice = *p.HighestPrice
		}
	}
	st.MaxFloatingProfit = st.FloatingPnL
	if p.MaxFloatingProfit != nil && p.MaxFloatingProfit.GreaterThan(st.MaxFloatingProfit) {
		st.MaxFloatingProfit = *p.MaxFloatingProfit
	}

	if stopLossHit(p.Direction, p.CurrentStopLoss, last) {
		st.Close = true
		st.CloseType = types.CloseTypeStopLoss
		return st
	}
	if takeProfitHit(p, strat, last, st.MaxFloatingProfit, st.FloatingPnL) {
		st.Close = true
		st.CloseType = types.CloseTypeTakeProfit
	}
	return st
}

// betterPrice reports whether prev is at least as favorable as last for the
// given direction: higher for longs, lower for shorts.
func betterPrice(dir types.Direction, prev, last decimal.Decimal) bool {
	if dir == types.DirectionShort {
		return prev.LessThanOrEqual(last)
	}
	return prev.GreaterThanOrEqual(last)
}

func stopLossHit(dir types.Direction, stop, last decimal.Decimal) bool {
	if !stop.IsPositive() {
		return false
	}
	if dir == types.DirectionShort {
		return last.GreaterThanOrEqual(stop)
	}
	return last.LessThanOrEqual(stop)
}

func takeProfitHit(p *model.Position, strat *model.TakeProfitStrategy, last, maxProfit, floating decimal.Decimal) bool {
	if strat != nil && strat.Status == types.StrategyStatusActive {
		switch strat.Kind {
		case types.TakeProfitKindPrice:
			if strat.TriggerPrice != nil {
				return priceTargetHit(p.Direction, *strat.TriggerPrice, last)
			}
		case types.TakeProfitKindDrawdown:
			if strat.DrawdownPercentage != nil {
				return drawdownHit(maxProfit, floating, *strat.DrawdownPercentage)
			}
		}
		return false
	}
	// No strategy row: fall back to the position's fixed take-profit price.
	// A zero price means no take-profit is armed.
	return priceTargetHit(p.Direction, p.TakeProfitPrice, last)
}

func priceTargetHit(dir types.Direction, target, last decimal.Decimal) bool {
	if !target.IsPositive() {
		return false
	}
	if dir == types.DirectionShort {
		return last.LessThanOrEqual(target)
	}
	return last.GreaterThanOrEqual(target)
}

// drawdownHit fires once the floating profit has given back the configured
// percentage of its peak. It only arms after the position has been in profit.
func drawdownHit(maxProfit, floating, pct decimal.Decimal) bool {
	if !maxProfit.IsPositive() || !pct.IsPositive() {
		return false
	}
	retraced := maxProfit.Sub(floating).Div(maxProfit).Mul(hundred)
	return retraced.GreaterThanOrEqual(pct)
}
