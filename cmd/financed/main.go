package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niyodushima/finance-dashboard/internal/amqp"
	"github.com/niyodushima/finance-dashboard/internal/auth"
	"github.com/niyodushima/finance-dashboard/internal/cli"
	apphttp "github.com/niyodushima/finance-dashboard/internal/http"
	"github.com/niyodushima/finance-dashboard/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting financed")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg.DBPath)
	defer repo.Close()

	verifier := auth.NewVerifier(repo)
	if err := verifier.Seed(context.Background()); err != nil {
		logger.Error("Failed to seed credentials", "error", err)
		os.Exit(1)
	}

	// AMQP is optional: without a broker URL, transactions are still
	// recorded but no events are published.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ledger := services.NewLedgerService(repo, publisher)

	srv := apphttp.NewServer(cfg.Addr(), ledger, repo, verifier, apphttp.Options{
		Prefix:     cfg.RoutePrefix,
		CORSOrigin: cfg.CORSOrigin,
		Envelope:   cfg.Envelope,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting financed server", "port", cfg.Port, "prefix", cfg.RoutePrefix)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
