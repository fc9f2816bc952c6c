package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/niyodushima/finance-dashboard/internal/amqp"
	"github.com/niyodushima/finance-dashboard/internal/cli"
	"github.com/niyodushima/finance-dashboard/internal/core"
	"github.com/niyodushima/finance-dashboard/internal/sheets"
	"github.com/niyodushima/finance-dashboard/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting summary-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg.DBPath)
	defer repo.Close()

	// Google Sheets export is optional; without a spreadsheet id the
	// worker only logs summary snapshots.
	var exporter *sheets.Exporter
	if cfg.SpreadsheetID != "" {
		var err error
		exporter, err = sheets.NewExporterFromEnv(context.Background(), cfg.SpreadsheetID, cfg.SheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.SpreadsheetID, "sheet", cfg.SheetName)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", "error", err)
			}
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue)
			err := amqpClient.Consume(gctx, func(msg *amqp.TransactionRecordedMessage) error {
				logger.Info("Transaction recorded",
					"kind", msg.Kind,
					"transaction_id", msg.ID,
					"customer_id", msg.CustomerID,
					"amount", core.FormatAmount(msg.Amount))
				return exportSummary(gctx, logger, repo, exporter)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := exportSummary(gctx, logger, repo, exporter); err != nil {
					logger.Error("Summary export failed", "error", err)
					// Keep ticking; transient export failures should not
					// kill the worker.
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

func exportSummary(ctx context.Context, logger *slog.Logger, repo *storage.Repository, exporter *sheets.Exporter) error {
	summary, err := repo.Summarize(ctx)
	if err != nil {
		return err
	}

	if exporter == nil {
		logger.Info("Summary snapshot", "customers", len(summary))
		return nil
	}
	return exporter.Export(ctx, summary)
}
