package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("account not found")

type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Data struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	TotalEquity     decimal.Decimal `json:"total_equity"`
	InitialValue    decimal.Decimal `json:"initial_value"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LeverageRatio   decimal.Decimal `json:"leverage_ratio"`
	UsedMargin      decimal.Decimal `json:"used_margin"`
	AvailableMargin decimal.Decimal `json:"available_margin"`
}

// RiskData is the account-level risk budget. These figures are configured by
// the operator and read here; the sizing engine only consumes them.
type RiskData struct {
	TotalRisk     decimal.Decimal `json:"total_risk"`
	UsedRisk      decimal.Decimal `json:"used_risk"`
	AvailableRisk decimal.Decimal `json:"available_risk"`
	MaxSingleRisk decimal.Decimal `json:"max_single_risk"`
	SuggestedRisk decimal.Decimal `json:"suggested_risk"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) ListActive(ctx context.Context) ([]Item, error) {
	rows, err := s.pool.Query(ctx, "select id, name from accounts where status = 'active' order by name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) GetData(ctx context.Context, accountID int64) (Data, error) {
	var d Data
	err := s.pool.QueryRow(ctx, `
		select id, name, total_equity, initial_value, total_value, leverage_ratio, used_margin, available_margin
		from accounts
		where id = $1
	`, accountID).Scan(
		&d.ID, &d.Name, &d.TotalEquity, &d.InitialValue, &d.TotalValue,
		&d.LeverageRatio, &d.UsedMargin, &d.AvailableMargin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Data{}, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}
	return d, err
}

func (s *Store) GetRiskData(ctx context.Context, accountID int64) (RiskData, error) {
	var r RiskData
	err := s.pool.QueryRow(ctx, `
		select total_risk, used_risk, available_risk, max_single_risk, suggested_risk
		from accounts
		where id = $1
	`, accountID).Scan(&r.TotalRisk, &r.UsedRisk, &r.AvailableRisk, &r.MaxSingleRisk, &r.SuggestedRisk)
	if errors.Is(err, pgx.ErrNoRows) {
		return RiskData{}, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}
	return r, err
}
