package draft

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"futures-assist/internal/accounts"
	"futures-assist/internal/httputil"
	"futures-assist/internal/model"
	"futures-assist/internal/pricing"
	"futures-assist/internal/types"
)

// Submitter turns a sized draft into a live position.
type Submitter interface {
	PlaceOrder(ctx context.Context, accountID int64, d Draft) (model.Position, error)
}

// RiskSource resolves the account risk budget used for risk-driven sizing.
type RiskSource interface {
	GetRiskData(ctx context.Context, accountID int64) (accounts.RiskData, error)
}

type Handler struct {
	session   *Session
	risk      RiskSource
	submitter Submitter
}

func NewHandler(session *Session, risk RiskSource, submitter Submitter) *Handler {
	return &Handler{session: session, risk: risk, submitter: submitter}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	d := h.session.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"preview": d.Preview()})
}

type updateRequest struct {
	Contract           *string          `json:"contract"`
	Direction          *string          `json:"direction"`
	EntryPrice         *decimal.Decimal `json:"entry_price"`
	Leverage           *int64           `json:"leverage"`
	Quantity           *int64           `json:"quantity"`
	Margin             *decimal.Decimal `json:"margin"`
	StopLossPrice      *decimal.Decimal `json:"stop_loss_price"`
	StopLossPercentage *decimal.Decimal `json:"stop_loss_percentage"`
	TakeProfitPrice    *decimal.Decimal `json:"take_profit_price"`
	TakeProfitDrawdown *decimal.Decimal `json:"take_profit_drawdown"`
}

// Update applies the submitted fields one by one. Each field either commits
// or is reported in the per-field error map; a bad stop-loss does not undo a
// good quantity.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}

	fieldErrs := map[string]string{}

	if req.Contract != nil {
		if err := h.session.SelectContract(*req.Contract); err != nil {
			fieldErrs["contract"] = err.Error()
		}
	}

	_ = h.session.Update(func(d *Draft) error {
		apply := func(field string, fn func() error) {
			if err := fn(); err != nil {
				fieldErrs[field] = err.Error()
			}
		}
		if req.Direction != nil {
			apply("direction", func() error {
				dir, err := types.ParseDirection(*req.Direction)
				if err != nil {
					return err
				}
				return d.SetDirection(dir)
			})
		}
		if req.EntryPrice != nil {
			apply("entry_price", func() error { return d.SetEntryPrice(*req.EntryPrice) })
		}
		if req.Leverage != nil {
			apply("leverage", func() error { return d.SetLeverage(*req.Leverage) })
		}
		if req.Quantity != nil {
			apply("quantity", func() error { return d.SetQuantity(*req.Quantity) })
		}
		if req.Margin != nil {
			apply("margin", func() error { return d.SetMargin(*req.Margin) })
		}
		if req.StopLossPrice != nil {
			apply("stop_loss_price", func() error { return d.SetStopLossPrice(*req.StopLossPrice) })
		}
		if req.StopLossPercentage != nil {
			apply("stop_loss_percentage", func() error { return d.SetStopLossPercentage(*req.StopLossPercentage) })
		}
		if req.TakeProfitPrice != nil {
			apply("take_profit_price", func() error { return d.SetTakeProfitPrice(*req.TakeProfitPrice) })
		}
		if req.TakeProfitDrawdown != nil {
			apply("take_profit_drawdown", func() error { return d.SetTakeProfitDrawdown(*req.TakeProfitDrawdown) })
		}
		return nil
	})

	if len(fieldErrs) > 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.FieldErrorResponse{Errors: fieldErrs})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

type applyRiskRequest struct {
	AccountID          int64            `json:"account_id"`
	Multiplier         decimal.Decimal  `json:"multiplier"`
	StopLossPercentage *decimal.Decimal `json:"stop_loss_percentage"`
}

// ApplyRisk sizes the draft from the account's configured risk budget.
func (h *Handler) ApplyRisk(w http.ResponseWriter, r *http.Request) {
	var req applyRiskRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	if req.AccountID <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid account_id"})
		return
	}

	risk, err := h.risk.GetRiskData(r.Context(), req.AccountID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "account not found"})
			return
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load risk data"})
		return
	}

	err = h.session.Update(func(d *Draft) error {
		pct := d.StopLossPercentage
		if req.StopLossPercentage != nil {
			pct = *req.StopLossPercentage
		}
		return d.ApplyRiskBudget(risk.MaxSingleRisk, req.Multiplier, pct)
	})
	if err != nil {
		var inputErr *pricing.InputError
		if errors.As(err, &inputErr) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.FieldErrorResponse{
				Errors: map[string]string{inputErr.Field: inputErr.Error()},
			})
			return
		}
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

type submitRequest struct {
	AccountID int64 `json:"account_id"`
}

// Submit places the drafted order and resets the session on success.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	if req.AccountID <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid account_id"})
		return
	}

	p, err := h.submitter.PlaceOrder(r.Context(), req.AccountID, h.session.Snapshot())
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidInput) || errors.Is(err, ErrNoContract) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
			return
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to place order"})
		return
	}
	h.session.Reset()
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// Reset discards the current draft.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.session.Reset()
	httputil.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}
