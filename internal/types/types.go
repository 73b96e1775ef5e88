package types

import (
	"fmt"
	"strings"
)

type Direction string

type PositionStatus string

type CloseType string

type TakeProfitKind string

type StrategyStatus string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

const (
	PositionStatusOpen   PositionStatus = "open"
	PositionStatusClosed PositionStatus = "closed"
)

const (
	CloseTypeManual     CloseType = "manual"
	CloseTypeStopLoss   CloseType = "stop_loss"
	CloseTypeTakeProfit CloseType = "take_profit"
)

const (
	TakeProfitKindPrice    TakeProfitKind = "price"
	TakeProfitKindDrawdown TakeProfitKind = "drawdown"
)

const (
	StrategyStatusActive    StrategyStatus = "active"
	StrategyStatusTriggered StrategyStatus = "triggered"
	StrategyStatusCanceled  StrategyStatus = "canceled"
)

// ParseDirection maps the free-text side strings used at the persistence and
// exchange edges ("buy"/"sell") onto the two-variant enum used everywhere else.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy", "long":
		return DirectionLong, nil
	case "sell", "short":
		return DirectionShort, nil
	default:
		return "", fmt.Errorf("invalid direction %q", raw)
	}
}

// Side returns the wire-level side string for a direction.
func (d Direction) Side() string {
	if d == DirectionShort {
		return "sell"
	}
	return "buy"
}

func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}
