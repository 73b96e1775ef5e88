package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"futures-assist/internal/accounts"
	"futures-assist/internal/auth"
	"futures-assist/internal/draft"
	"futures-assist/internal/marketdata"
	"futures-assist/internal/positions"
)

type RouterDeps struct {
	AuthHandler      *auth.Handler
	AccountsHandler  *accounts.Handler
	DraftHandler     *draft.Handler
	PositionsHandler *positions.Handler
	MarketHandler    *marketdata.Handler
	AuthService      *auth.Service
	WSHandler        http.Handler
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS middleware for the desktop/web client
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", d.AuthHandler.Login)
		r.Get("/ws", d.WSHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))

			r.Get("/accounts", d.AccountsHandler.List)
			r.Get("/accounts/{accountID}", d.AccountsHandler.Get)
			r.Get("/accounts/{accountID}/risk", d.AccountsHandler.GetRisk)

			r.Get("/tickers", d.MarketHandler.ListTickers)
			r.Get("/tickers/{symbol}", d.MarketHandler.GetTicker)
			r.Post("/exchange/test", d.MarketHandler.TestConnection)

			r.Route("/draft", func(r chi.Router) {
				r.Get("/", d.DraftHandler.Get)
				r.Patch("/", d.DraftHandler.Update)
				r.Get("/preview", d.DraftHandler.GetPreview)
				r.Post("/risk", d.DraftHandler.ApplyRisk)
				r.Post("/submit", d.DraftHandler.Submit)
				r.Delete("/", d.DraftHandler.Reset)
			})

			r.Route("/positions", func(r chi.Router) {
				r.Get("/", d.PositionsHandler.ListOpen)
				r.Get("/history", d.PositionsHandler.ListClosed)
				r.Get("/{orderID}", d.PositionsHandler.Get)
				r.Post("/{orderID}/close", d.PositionsHandler.Close)
				r.Patch("/{orderID}/stop-loss", d.PositionsHandler.MoveStopLoss)
			})
		})
	})

	return r
}
