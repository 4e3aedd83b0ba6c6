package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"projectflow/internal/handlers"
	"projectflow/internal/metrics"
	"projectflow/internal/ratelimit"
	"projectflow/internal/repositories"
	"projectflow/internal/services"
)

func newServeCommand() *cobra.Command {
	var runMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := setup(ctx)
			if err != nil {
				return err
			}
			defer r.close()

			if runMigrations {
				if err := migrateDatabase(ctx, r); err != nil {
					return err
				}
			}
			return serve(ctx, r)
		},
	}
	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func loginLimiter(r *runtime) (services.LoginLimiter, func(), error) {
	if r.cfg.Redis.Addr == "" {
		r.log.Info("login throttling disabled, REDIS_ADDR not set")
		return services.NoopLoginLimiter(), func() {}, nil
	}
	client, err := ratelimit.NewClient(r.cfg.Redis.Addr, r.cfg.Redis.Password, r.cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	limiter := ratelimit.NewLoginLimiter(client, r.cfg.Login.MaxAttempts, r.cfg.Login.Window)
	return limiter, func() { _ = client.Close() }, nil
}

func serve(ctx context.Context, r *runtime) error {
	cfg := r.cfg

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	limiter, closeLimiter, err := loginLimiter(r)
	if err != nil {
		return err
	}
	defer closeLimiter()

	tenantRepo := repositories.NewTenantRepo(r.pool)
	userRepo := repositories.NewUserRepo(r.pool)
	projectRepo := repositories.NewProjectRepo(r.pool)
	taskRepo := repositories.NewTaskRepo(r.pool)

	hasher := services.NewPasswordHasher(bcrypt.DefaultCost)
	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	e := handlers.NewRouter(handlers.Dependencies{
		Logger:      r.log,
		Metrics:     m,
		DB:          r.pool,
		JWTSecret:   cfg.JWT.Secret,
		FrontendURL: cfg.Server.FrontendURL,
		Auth: services.NewAuthService(tenantRepo, userRepo, tokens, hasher, limiter, services.RegistrationDefaults{
			Plan:        cfg.Tenant.Plan,
			MaxUsers:    cfg.Tenant.MaxUsers,
			MaxProjects: cfg.Tenant.MaxProjects,
		}, r.log),
		Tenants:  services.NewTenantService(tenantRepo),
		Users:    services.NewUserService(userRepo, hasher),
		Projects: services.NewProjectService(projectRepo),
		Tasks:    services.NewTaskService(taskRepo, projectRepo, userRepo),
	})

	errCh := make(chan error, 1)
	go func() {
		r.log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	r.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
