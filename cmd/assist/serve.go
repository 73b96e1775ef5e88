package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"futures-assist/internal/accounts"
	"futures-assist/internal/auth"
	"futures-assist/internal/config"
	"futures-assist/internal/db"
	"futures-assist/internal/draft"
	"futures-assist/internal/httpserver"
	"futures-assist/internal/marketdata"
	"futures-assist/internal/positions"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	var exchange marketdata.Exchange = marketdata.DisabledExchange{}
	if cfg.ExchangeBaseURL != "" {
		exchange = marketdata.NewClient(cfg.ExchangeBaseURL, cfg.ExchangeKey, cfg.ExchangeSecret)
	}

	bus := marketdata.NewBus()
	cache := marketdata.NewCache()

	positionStore := positions.NewStore(pool)
	positionSvc := positions.NewService(positionStore, cache, bus)

	accountStore := accounts.NewStore(pool)
	authSvc := auth.NewService(pool, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	session := draft.NewSession(cache)

	poller := marketdata.NewPoller(exchange, cache, bus, positionSvc, cfg.Symbols, cfg.PollInterval)
	go poller.Run(ctx)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:      auth.NewHandler(authSvc),
		AccountsHandler:  accounts.NewHandler(accountStore),
		DraftHandler:     draft.NewHandler(session, accountStore, positionSvc),
		PositionsHandler: positions.NewHandler(positionStore, positionSvc),
		MarketHandler:    marketdata.NewHandler(cache, exchange),
		AuthService:      authSvc,
		WSHandler:        marketdata.NewWSHandler(bus, authSvc, cfg.WSOrigin),
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	log.Printf("server listening on %s", cfg.HTTPAddr)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
