// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/carterperez-dev/templates/commerce-backend/internal/config"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/migrations"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to config file")
	databaseURL := pflag.String("database-url", "", "overrides database.url from config")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [flags] up|down|status|reset\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *databaseURL, pflag.Arg(0)); err != nil {
		slog.Error("migration error", "error", err)
		os.Exit(1)
	}
}

func run(configPath, databaseURL, command string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if databaseURL != "" {
		if err := os.Setenv("DATABASE_URL", databaseURL); err != nil {
			return fmt.Errorf("set database url: %w", err)
		}
	}

	dbCfg, err := config.LoadDatabase(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return migrations.Run(ctx, db.DB.DB, command)
}
