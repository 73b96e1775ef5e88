package positions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"futures-assist/internal/model"
	"futures-assist/internal/types"
)

var (
	ErrNotFound      = errors.New("position not found")
	ErrAlreadyClosed = errors.New("position already closed")
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const positionColumns = `
	id, order_id, account_id, contract, direction, quantity, leverage,
	entry_price, face_value, margin, total_value,
	initial_stop_loss, current_stop_loss, take_profit_price,
	last_price, floating_pnl, highest_price, max_floating_profit,
	status, open_time, close_time, close_price, realized_profit, close_type`

func scanPosition(row pgx.Row) (model.Position, error) {
	var p model.Position
	var direction, status string
	var closeType *string
	err := row.Scan(
		&p.ID, &p.OrderID, &p.AccountID, &p.Contract, &direction, &p.Quantity, &p.Leverage,
		&p.EntryPrice, &p.FaceValue, &p.Margin, &p.TotalValue,
		&p.InitialStopLoss, &p.CurrentStopLoss, &p.TakeProfitPrice,
		&p.LastPrice, &p.FloatingPnL, &p.HighestPrice, &p.MaxFloatingProfit,
		&status, &p.OpenTime, &p.CloseTime, &p.ClosePrice, &p.RealizedProfit, &closeType,
	)
	if err != nil {
		return model.Position{}, err
	}
	p.Direction, err = types.ParseDirection(direction)
	if err != nil {
		return model.Position{}, err
	}
	p.Status = types.PositionStatus(status)
	if closeType != nil {
		p.CloseType = types.CloseType(*closeType)
	}
	return p, nil
}

func (s *Store) collect(ctx context.Context, query string, args ...any) ([]model.Position, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListOpen(ctx context.Context, accountID int64) ([]model.Position, error) {
	return s.collect(ctx, `
		select `+positionColumns+`
		from positions
		where account_id = $1 and status = 'open'
		order by open_time desc
	`, accountID)
}

func (s *Store) ListClosed(ctx context.Context, accountID int64, limit int) ([]model.Position, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.collect(ctx, `
		select `+positionColumns+`
		from positions
		where account_id = $1 and status = 'closed'
		order by close_time desc
		limit $2
	`, accountID, limit)
}

// AllOpen returns every open position regardless of account. The tick loop
// uses it to mark positions across all operator accounts.
func (s *Store) AllOpen(ctx context.Context, contract string) ([]model.Position, error) {
	return s.collect(ctx, `
		select `+positionColumns+`
		from positions
		where contract = $1 and status = 'open'
	`, contract)
}

func (s *Store) GetByOrderID(ctx context.Context, orderID string) (model.Position, error) {
	p, err := scanPosition(s.pool.QueryRow(ctx, `
		select `+positionColumns+`
		from positions
		where order_id = $1
	`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Position{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return p, err
}

// Create inserts the position and, when a take-profit strategy accompanies
// it, the strategy row in the same transaction.
func (s *Store) Create(ctx context.Context, p *model.Position, strat *model.TakeProfitStrategy) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		insert into positions (
			order_id, account_id, contract, direction, quantity, leverage,
			entry_price, face_value, margin, total_value,
			initial_stop_loss, current_stop_loss, take_profit_price,
			last_price, floating_pnl, status, open_time
		) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,'open',$16)
		returning id
	`,
		p.OrderID, p.AccountID, p.Contract, string(p.Direction), p.Quantity, p.Leverage,
		p.EntryPrice, p.FaceValue, p.Margin, p.TotalValue,
		p.InitialStopLoss, p.CurrentStopLoss, p.TakeProfitPrice,
		p.LastPrice, p.FloatingPnL, p.OpenTime,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert position: %w", err)
	}

	if strat != nil {
		err = tx.QueryRow(ctx, `
			insert into take_profit_strategies (order_id, kind, trigger_price, drawdown_percentage, status, created_at, updated_at)
			values ($1,$2,$3,$4,'active',$5,$5)
			returning id
		`, p.OrderID, string(strat.Kind), strat.TriggerPrice, strat.DrawdownPercentage, p.OpenTime).Scan(&strat.ID)
		if err != nil {
			return fmt.Errorf("insert take-profit strategy: %w", err)
		}
		strat.OrderID = p.OrderID
		strat.Status = types.StrategyStatusActive
	}

	return tx.Commit(ctx)
}

// ActiveStrategy loads the active take-profit strategy for an order, or nil
// when none is configured.
func (s *Store) ActiveStrategy(ctx context.Context, orderID string) (*model.TakeProfitStrategy, error) {
	var st model.TakeProfitStrategy
	var kind, status string
	err := s.pool.QueryRow(ctx, `
		select id, order_id, kind, trigger_price, drawdown_percentage, status, created_at, updated_at
		from take_profit_strategies
		where order_id = $1 and status = 'active'
	`, orderID).Scan(&st.ID, &st.OrderID, &kind, &st.TriggerPrice, &st.DrawdownPercentage, &status, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st.Kind = types.TakeProfitKind(kind)
	st.Status = types.StrategyStatus(status)
	return &st, nil
}

// UpdateTick persists the mark-to-market columns refreshed by a price update.
func (s *Store) UpdateTick(ctx context.Context, orderID string, st TickState) error {
	tag, err := s.pool.Exec(ctx, `
		update positions
		set last_price = $2, floating_pnl = $3, highest_price = $4, max_floating_profit = $5
		where order_id = $1 and status = 'open'
	`, orderID, st.LastPrice, st.FloatingPnL, st.HighestPrice, st.MaxFloatingProfit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrAlreadyClosed)
	}
	return nil
}

// Close transitions an open position to closed. The status guard makes the
// transition idempotent under concurrent triggers.
func (s *Store) Close(ctx context.Context, orderID string, closePrice, realized decimal.Decimal, closeType types.CloseType, at time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		update positions
		set status = 'closed', close_time = $2, close_price = $3, realized_profit = $4, close_type = $5,
		    last_price = $3, floating_pnl = $4
		where order_id = $1 and status = 'open'
	`, orderID, at, closePrice, realized, string(closeType))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrAlreadyClosed)
	}

	strategyStatus := string(types.StrategyStatusCanceled)
	if closeType == types.CloseTypeTakeProfit {
		strategyStatus = string(types.StrategyStatusTriggered)
	}
	_, err = tx.Exec(ctx, `
		update take_profit_strategies
		set status = $2, updated_at = $3
		where order_id = $1 and status = 'active'
	`, orderID, strategyStatus, at)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateStopLoss moves the working stop of an open position.
func (s *Store) UpdateStopLoss(ctx context.Context, orderID string, stop decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx, `
		update positions
		set current_stop_loss = $2
		where order_id = $1 and status = 'open'
	`, orderID, stop)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return nil
}
