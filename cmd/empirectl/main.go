package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rpggio/starbase/internal/app"
	"github.com/rpggio/starbase/internal/config"
	"github.com/rpggio/starbase/internal/logging"
	"github.com/rpggio/starbase/internal/sqlite"
)

var (
	dbPath   string
	logLevel string
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		errorColor.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(cfg)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		errorColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "empirectl",
		Short:         "Operate a starbase database",
		Long:          "Seed empires, run ticks by hand and inspect queues, bases and the credit ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DB.Path, "Path to the SQLite database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newSeedCmd(cfg),
		newTickCmd(cfg),
		newQueueCmd(cfg),
		newStatusCmd(cfg),
		newLedgerCmd(cfg),
		newReconcileCmd(cfg),
		newFleetCmd(cfg),
		newResearchCmd(cfg),
	)
	return rootCmd
}

// env is an opened database with every service wired.
type env struct {
	db     *sqlite.DB
	svc    *app.Services
	logger *slog.Logger
}

func (e *env) Close() {
	e.svc.Events.Close()
	e.db.Close()
}

func openEnv(ctx context.Context, cfg config.Config) (*env, error) {
	logger, _, err := logging.New(config.LogConfig{Level: logLevel}, os.Stderr)
	if err != nil {
		return nil, err
	}
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	svc := app.New(db, app.OptionsFromConfig(cfg.Game), logger)
	return &env{db: db, svc: svc, logger: logger}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func fmtInt(n int64) string { return fmt.Sprintf("%d", n) }
