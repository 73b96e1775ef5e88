package positions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"futures-assist/internal/httputil"
	"futures-assist/internal/model"
	"futures-assist/internal/pricing"
)

type Handler struct {
	store   *Store
	service *Service
}

func NewHandler(store *Store, service *Service) *Handler {
	return &Handler{store: store, service: service}
}

func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
	accountID, ok := queryAccountID(w, r)
	if !ok {
		return
	}
	list, err := h.store.ListOpen(r.Context(), accountID)
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load positions"})
		return
	}
	if list == nil {
		list = []model.Position{}
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListClosed(w http.ResponseWriter, r *http.Request) {
	accountID, ok := queryAccountID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.store.ListClosed(r.Context(), accountID, limit)
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load history"})
		return
	}
	if list == nil {
		list = []model.Position{}
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetByOrderID(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.ClosePosition(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) MoveStopLoss(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StopLossPrice decimal.Decimal `json:"stop_loss_price"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	p, err := h.service.MoveStopLoss(r.Context(), chi.URLParam(r, "orderID"), req.StopLossPrice)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func queryAccountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid account_id"})
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "position not found"})
	case errors.Is(err, ErrAlreadyClosed):
		httputil.WriteJSON(w, http.StatusConflict, httputil.ErrorResponse{Error: "position already closed"})
	case errors.Is(err, pricing.ErrInvalidInput), errors.Is(err, ErrNotSizeable), errors.Is(err, ErrNoLastPrice):
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
	default:
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "operation failed"})
	}
}
