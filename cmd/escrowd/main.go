// Command escrowd runs the escrow fundraising ledger service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fundlock/escrowd/internal/api"
	"github.com/fundlock/escrowd/internal/config"
	"github.com/fundlock/escrowd/internal/logging"
	"github.com/fundlock/escrowd/internal/metrics"
	"github.com/fundlock/escrowd/services/crowdfund"
)

func main() {
	// .env is optional; real deployments configure via file or environment.
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault()
	if err != nil {
		logging.NewDefault("escrowd").WithError(err).Error("configuration invalid")
		os.Exit(1)
	}

	logger := logging.New("escrowd", cfg.LogLevel, cfg.LogFormat)
	m := metrics.New()

	svc, err := crowdfund.New(crowdfund.Config{
		Admin:    cfg.AdminAddress,
		Transfer: dryRunTransfer(logger),
		Logger:   logger.WithField("component", crowdfund.ServiceID),
		Metrics:  m,
	})
	if err != nil {
		logger.WithError(err).Error("create service")
		os.Exit(1)
	}

	server := api.NewServer(svc, logger, m)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Router(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("escrowd listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("http server stopped")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("shutdown incomplete")
	}
}

// dryRunTransfer acknowledges outbound transfers without moving value. The
// production deployment injects the settlement adapter here; the ledger
// semantics do not depend on which primitive is wired in.
func dryRunTransfer(logger *logging.Logger) crowdfund.TransferFunc {
	return func(ctx context.Context, to string, amount int64) error {
		logger.WithField("to", to).WithField("amount", amount).Info("outbound transfer")
		return nil
	}
}
