package model

import (
	"time"

	"github.com/shopspring/decimal"

	"futures-assist/internal/types"
)

// Position is a persisted simulated order. It is created with status=open at
// submission time, mutated on every market-data tick, and transitioned to
// closed exactly once with a terminal close type and realized profit.
type Position struct {
	ID        int64             `json:"id"`
	OrderID   string            `json:"order_id"`
	AccountID int64             `json:"account_id"`
	Contract  string            `json:"contract"`
	Direction types.Direction   `json:"direction"`
	Quantity  int64             `json:"quantity"`
	Leverage  int64             `json:"leverage"`

	EntryPrice decimal.Decimal `json:"entry_price"`
	FaceValue  decimal.Decimal `json:"face_value"`
	Margin     decimal.Decimal `json:"margin"`
	TotalValue decimal.Decimal `json:"total_value"`

	InitialStopLoss decimal.Decimal `json:"initial_stop_loss"`
	CurrentStopLoss decimal.Decimal `json:"current_stop_loss"`
	TakeProfitPrice decimal.Decimal `json:"take_profit_price"`

	LastPrice         decimal.Decimal  `json:"last_price"`
	FloatingPnL       decimal.Decimal  `json:"floating_pnl"`
	HighestPrice      *decimal.Decimal `json:"highest_price,omitempty"`
	MaxFloatingProfit *decimal.Decimal `json:"max_floating_profit,omitempty"`

	Status    types.PositionStatus `json:"status"`
	OpenTime  time.Time            `json:"open_time"`
	CloseTime *time.Time           `json:"close_time,omitempty"`

	ClosePrice     *decimal.Decimal `json:"close_price,omitempty"`
	RealizedProfit *decimal.Decimal `json:"realized_profit,omitempty"`
	CloseType      types.CloseType  `json:"close_type,omitempty"`
}

// TakeProfitStrategy is the exit policy attached to a position: either a
// fixed trigger price or a drawdown (retracement from the best price seen).
type TakeProfitStrategy struct {
	ID                 int64                `json:"id"`
	OrderID            string               `json:"order_id"`
	Kind               types.TakeProfitKind `json:"kind"`
	TriggerPrice       *decimal.Decimal     `json:"trigger_price,omitempty"`
	DrawdownPercentage *decimal.Decimal     `json:"drawdown_percentage,omitempty"`
	Status             types.StrategyStatus `json:"status"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}
