package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"submarine/src/engine"
	"submarine/src/handler"
	"submarine/src/repository"
)

// NewRouter wires the trading API onto a chi router.
func NewRouter(eng *engine.Engine, trades *repository.TradeRepository, prices handler.PriceSource, accountID string) *chi.Mux {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", handler.SubmitOrderHandler(eng, prices))
		r.Get("/orders", handler.ListOrdersHandler(eng))
		r.Delete("/orders/{id}", handler.CancelOrderHandler(eng))

		r.Get("/positions", handler.ListPositionsHandler(eng))
		r.Post("/positions/close-all", handler.CloseAllPositionsHandler(eng, prices))
		r.Post("/positions/{id}/close", handler.ClosePositionHandler(eng, prices))
		r.Post("/positions/{id}/partial-close", handler.PartialClosePositionHandler(eng, prices))
		r.Post("/positions/{id}/reverse", handler.ReversePositionHandler(eng, prices))
		r.Post("/positions/{id}/tpsl", handler.AddTPSLHandler(eng))
		r.Delete("/positions/{id}/tpsl/{tpslId}", handler.CancelTPSLHandler(eng))

		r.Get("/account", handler.GetAccountHandler(eng))
		r.Put("/account/settings", handler.UpdateSettingsHandler(eng))

		r.Get("/trades", handler.ListTradesHandler(trades, accountID))
		r.Get("/stats", handler.StatsHandler(trades, accountID))
	})

	return r
}

func StartServer(port string, router http.Handler) {
	// Graceful server
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
