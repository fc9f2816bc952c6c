package main

import (
	"context"
	"os"

	"github.com/niyodushima/finance-dashboard/internal/auth"
	"github.com/niyodushima/finance-dashboard/internal/cli"
	"github.com/niyodushima/finance-dashboard/internal/dashboard"
	"github.com/niyodushima/finance-dashboard/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg.DBPath)
	defer repo.Close()

	verifier := auth.NewVerifier(repo)
	if err := verifier.Seed(context.Background()); err != nil {
		logger.Error("Failed to seed credentials", "error", err)
		os.Exit(1)
	}

	ledger := services.NewLedgerService(repo, nil)

	d := dashboard.New(os.Stdin, os.Stdout, ledger, repo, verifier)
	if err := d.Run(context.Background()); err != nil {
		logger.Error("Dashboard session failed", "error", err)
		os.Exit(1)
	}
}
