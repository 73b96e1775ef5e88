package marketdata

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"futures-assist/internal/httputil"
)

type Handler struct {
	cache    *Cache
	exchange Exchange
}

func NewHandler(cache *Cache, exchange Exchange) *Handler {
	return &Handler{cache: cache, exchange: exchange}
}

func (h *Handler) ListTickers(w http.ResponseWriter, r *http.Request) {
	tickers := h.cache.Tickers()
	sort.Slice(tickers, func(i, j int) bool { return tickers[i].Symbol < tickers[j].Symbol })
	httputil.WriteJSON(w, http.StatusOK, tickers)
}

func (h *Handler) GetTicker(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	t, ok := h.cache.Ticker(symbol)
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "no ticker for " + symbol})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// TestConnection runs the signed connectivity probe against the exchange.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.exchange.Ping(r.Context()); err != nil {
		httputil.WriteJSON(w, http.StatusBadGateway, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
