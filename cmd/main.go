package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"projectflow/internal/config"
	"projectflow/pkg/database"
	"projectflow/pkg/logger"
)

const (
	serviceName = "projectflow"
	version     = "1.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Multi-tenant project and task tracking API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand(), newMigrateCommand(), newCreateSuperAdminCommand())
	return cmd
}

// runtime is what every subcommand needs: settings, a logger and a pool.
type runtime struct {
	cfg  *config.Config
	log  *zap.Logger
	pool *pgxpool.Pool
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Options{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &runtime{cfg: cfg, log: log, pool: pool}, nil
}

func (r *runtime) close() {
	r.pool.Close()
	_ = r.log.Sync()
}

func migrateDatabase(ctx context.Context, r *runtime) error {
	status, err := database.Migrate(ctx, r.pool)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if !status.Changed() {
		r.log.Info("database schema up to date", zap.Uint("version", status.To))
		return nil
	}
	r.log.Info("applied migrations", zap.Uint("from", status.From), zap.Uint("to", status.To))
	return nil
}
