package positions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"futures-assist/internal/draft"
	"futures-assist/internal/marketdata"
	"futures-assist/internal/model"
	"futures-assist/internal/pricing"
	"futures-assist/internal/types"
)

var (
	ErrNotSizeable = fmt.Errorf("%w: draft is not sizeable", pricing.ErrInvalidInput)
	ErrNoLastPrice = errors.New("no market price for contract")
)

// Service owns the position lifecycle: opening from a sized draft, marking to
// market on every tick, and closing on triggers or operator request.
type Service struct {
	store *Store
	cache *marketdata.Cache
	bus   *marketdata.Bus
}

func NewService(store *Store, cache *marketdata.Cache, bus *marketdata.Bus) *Service {
	return &Service{store: store, cache: cache, bus: bus}
}

// PlaceOrder opens a simulated position from a draft snapshot. The value
// triad is recomputed from the quantity before persisting so a stale draft
// can never write inconsistent figures.
func (s *Service) PlaceOrder(ctx context.Context, accountID int64, d draft.Draft) (model.Position, error) {
	if accountID <= 0 {
		return model.Position{}, errors.New("invalid account id")
	}
	if !d.Sizeable() {
		return model.Position{}, ErrNotSizeable
	}
	if !d.Direction.Valid() {
		return model.Position{}, fmt.Errorf("%w: direction", pricing.ErrInvalidInput)
	}
	if d.Quantity <= 0 {
		return model.Position{}, fmt.Errorf("%w: quantity", pricing.ErrInvalidInput)
	}
	if !d.EntryPrice.IsPositive() {
		return model.Position{}, fmt.Errorf("%w: entry_price", pricing.ErrInvalidInput)
	}

	total := pricing.TotalValue(d.Quantity, d.FaceValue, d.Leverage)
	margin, err := pricing.MarginFromValue(total, d.Leverage)
	if err != nil {
		return model.Position{}, err
	}

	last, ok := s.cache.LastPrice(d.Symbol)
	if !ok {
		last = d.EntryPrice
	}

	now := time.Now().UTC()
	p := model.Position{
		OrderID:         ulid.Make().String(),
		AccountID:       accountID,
		Contract:        d.Symbol,
		Direction:       d.Direction,
		Quantity:        d.Quantity,
		Leverage:        d.Leverage,
		EntryPrice:      d.EntryPrice,
		FaceValue:       d.FaceValue,
		Margin:          margin,
		TotalValue:      total,
		InitialStopLoss: d.StopLossPrice,
		CurrentStopLoss: d.StopLossPrice,
		TakeProfitPrice: d.TakeProfitPrice,
		LastPrice:       last,
		FloatingPnL:     pricing.FloatingPnL(d.Direction, d.Quantity, d.EntryPrice, last),
		Status:          types.PositionStatusOpen,
		OpenTime:        now,
	}

	var strat *model.TakeProfitStrategy
	switch {
	case d.TakeProfitDrawdown.IsPositive():
		dd := d.TakeProfitDrawdown
		strat = &model.TakeProfitStrategy{
			Kind:               types.TakeProfitKindDrawdown,
			DrawdownPercentage: &dd,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
	case d.TakeProfitPrice.IsPositive():
		tp := d.TakeProfitPrice
		strat = &model.TakeProfitStrategy{
			Kind:         types.TakeProfitKindPrice,
			TriggerPrice: &tp,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	if err := s.store.Create(ctx, &p, strat); err != nil {
		return model.Position{}, err
	}

	s.publish(marketdata.EventPositionUpdate, p)
	return p, nil
}

// ClosePosition closes an open position at the current market price on the
// operator's request.
func (s *Service) ClosePosition(ctx context.Context, orderID string) (model.Position, error) {
	p, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return model.Position{}, err
	}
	if p.Status != types.PositionStatusOpen {
		return model.Position{}, fmt.Errorf("order %s: %w", orderID, ErrAlreadyClosed)
	}

	last, ok := s.cache.LastPrice(p.Contract)
	if !ok {
		if !p.LastPrice.IsPositive() {
			return model.Position{}, fmt.Errorf("%w: %s", ErrNoLastPrice, p.Contract)
		}
		last = p.LastPrice
	}

	return s.closeAt(ctx, p, last, types.CloseTypeManual)
}

// MoveStopLoss updates the working stop of an open position, validating the
// new level against the position's direction.
func (s *Service) MoveStopLoss(ctx context.Context, orderID string, stop decimal.Decimal) (model.Position, error) {
	if !stop.IsPositive() {
		return model.Position{}, fmt.Errorf("%w: stop_loss_price", pricing.ErrInvalidInput)
	}
	p, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return model.Position{}, err
	}
	if p.Status != types.PositionStatusOpen {
		return model.Position{}, fmt.Errorf("order %s: %w", orderID, ErrAlreadyClosed)
	}
	if p.Direction == types.DirectionLong && stop.GreaterThanOrEqual(p.EntryPrice) && stop.GreaterThan(p.LastPrice) {
		return model.Position{}, fmt.Errorf("%w: stop above market for long", pricing.ErrInvalidInput)
	}
	if p.Direction == types.DirectionShort && stop.LessThanOrEqual(p.EntryPrice) && stop.LessThan(p.LastPrice) {
		return model.Position{}, fmt.Errorf("%w: stop below market for short", pricing.ErrInvalidInput)
	}
	if err := s.store.UpdateStopLoss(ctx, orderID, stop); err != nil {
		return model.Position{}, err
	}
	p.CurrentStopLoss = stop
	s.publish(marketdata.EventPositionUpdate, p)
	return p, nil
}

// OnPriceUpdate implements marketdata.TickSink. Every fresh price marks all
// open positions on the contract and fires any triggered exits.
func (s *Service) OnPriceUpdate(ctx context.Context, symbol string, lastPrice decimal.Decimal) error {
	if !lastPrice.IsPositive() {
		return nil
	}
	open, err := s.store.AllOpen(ctx, symbol)
	if err != nil {
		return err
	}
	for i := range open {
		p := &open[i]
		strat, err := s.store.ActiveStrategy(ctx, p.OrderID)
		if err != nil {
			log.Printf("positions: strategy %s: %v", p.OrderID, err)
			continue
		}
		st := evaluateTick(p, strat, lastPrice)
		if st.Close {
			if _, err := s.closeAt(ctx, *p, lastPrice, st.CloseType); err != nil && !errors.Is(err, ErrAlreadyClosed) {
				log.Printf("positions: close %s: %v", p.OrderID, err)
			}
			continue
		}
		if err := s.store.UpdateTick(ctx, p.OrderID, st); err != nil {
			if !errors.Is(err, ErrAlreadyClosed) {
				log.Printf("positions: tick %s: %v", p.OrderID, err)
			}
			continue
		}
		p.LastPrice = st.LastPrice
		p.FloatingPnL = st.FloatingPnL
		p.HighestPrice = &st.HighestPrice
		p.MaxFloatingProfit = &st.MaxFloatingProfit
		s.publish(marketdata.EventPositionUpdate, *p)
	}
	return nil
}

func (s *Service) closeAt(ctx context.Context, p model.Position, closePrice decimal.Decimal, closeType types.CloseType) (model.Position, error) {
	realized := pricing.FloatingPnL(p.Direction, p.Quantity, p.EntryPrice, closePrice)
	now := time.Now().UTC()
	if err := s.store.Close(ctx, p.OrderID, closePrice, realized, closeType, now); err != nil {
		return model.Position{}, err
	}
	p.Status = types.PositionStatusClosed
	p.CloseTime = &now
	p.ClosePrice = &closePrice
	p.RealizedProfit = &realized
	p.CloseType = closeType
	p.LastPrice = closePrice
	p.FloatingPnL = realized
	s.publish(marketdata.EventPositionClosed, p)
	return p, nil
}

func (s *Service) publish(eventType string, p model.Position) {
	if s.bus != nil {
		s.bus.Publish(marketdata.Event{Type: eventType, Data: p})
	}
}
