package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fotowand/backend/internal/config"
	"github.com/fotowand/backend/internal/db"
	"github.com/fotowand/backend/internal/handler"
	"github.com/fotowand/backend/internal/password"
	"github.com/fotowand/backend/internal/service"
	"github.com/fotowand/backend/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type store interface {
	service.UserStore
	service.BookStore
}

// resources owns everything serve and migrate open.
type resources struct {
	pool    *pgxpool.Pool
	store   store
	closers []func() error
}

func (r *resources) close(logger *zap.Logger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logger.Warn("close resource", zap.Error(err))
		}
	}
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *resources) postgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	if r.pool != nil {
		return r.pool, nil
	}
	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	r.pool = pool
	return pool, nil
}

func openStore(ctx context.Context, cfg config.Config, res *resources) error {
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := res.postgresPool(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		res.store = db.NewPostgres(pool)
	case "sqlite":
		sqlite, err := db.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		res.closers = append(res.closers, sqlite.Close)
		res.store = sqlite
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
	return nil
}

func openRegistry(ctx context.Context, cfg config.Config, res *resources, logger *zap.Logger) (token.Registry, error) {
	switch cfg.Registry.Backend {
	case "memory":
		return token.NewMemoryRegistry(), nil
	case "bolt":
		registry, err := token.OpenBoltRegistry(cfg.Registry.BoltPath)
		if err != nil {
			return nil, err
		}
		res.closers = append(res.closers, registry.Close)
		return registry, nil
	case "postgres":
		pool, err := res.postgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		registry := db.NewPostgresRegistry(pool)
		purged, err := registry.PurgeExpired(ctx)
		if err != nil {
			return nil, fmt.Errorf("purge expired refresh tokens: %w", err)
		}
		logger.Info("expired refresh tokens purged", zap.Int64("count", purged))
		return registry, nil
	default:
		return nil, fmt.Errorf("unknown REGISTRY_BACKEND %q", cfg.Registry.Backend)
	}
}

func newIssuer(cfg config.AuthConfig) (*token.Issuer, error) {
	accessTTL, err := config.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRATION: %w", err)
	}
	refreshTTL, err := config.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("REFRESH_TOKEN_EXPIRATION: %w", err)
	}
	return token.NewIssuer(token.IssuerConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	})
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.HTTP.GinMode != "" {
		gin.SetMode(cfg.HTTP.GinMode)
	}

	// 토큰 발급기는 시크릿이 없으면 시작하지 않는다
	issuer, err := newIssuer(cfg.Auth)
	if err != nil {
		return err
	}
	hasher, err := password.New(cfg.Auth.PasswordHasher, cfg.Auth.PasswordPepper)
	if err != nil {
		return err
	}

	res := &resources{}
	defer res.close(logger)

	if err := openStore(ctx, cfg, res); err != nil {
		return err
	}
	registry, err := openRegistry(ctx, cfg, res, logger)
	if err != nil {
		return err
	}

	authService, err := service.NewAuthService(
		res.store,
		hasher,
		issuer,
		registry,
		service.NewPermissionResolver(res.store, cfg.Auth.AdminEmails),
		logger,
	)
	if err != nil {
		return err
	}

	if cfg.Admin.Email != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		Auth:           authService,
		Books:          service.NewBookService(res.store),
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimit:      cfg.RateLimit.RequestsPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("registry", cfg.Registry.Backend),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrate(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	res := &resources{}
	defer res.close(logger)

	if err := openStore(ctx, cfg, res); err != nil {
		return err
	}
	if cfg.Registry.Backend == "postgres" {
		if _, err := res.postgresPool(ctx, cfg.Postgres); err != nil {
			return err
		}
	}

	logger.Info("migrations applied", zap.String("store", cfg.Store.Driver))
	return nil
}
