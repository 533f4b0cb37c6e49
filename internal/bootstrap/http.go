package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/backlot/backlot-api/config"
	"github.com/backlot/backlot-api/internal/core"
	httpx "github.com/backlot/backlot-api/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Identity core.IdentityProvider
	DB       *sql.DB
	Logger   *slog.Logger
}

// NewHTTPServer builds the configured HTTP server around the router.
func NewHTTPServer(cfg HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cacheHealth httpx.CacheHealth
	if cfg.Services.Cache != nil {
		cacheHealth = cfg.Services.Cache
	}

	handler := httpx.Routes(httpx.RouterConfig{
		Jobs:         cfg.Services.Jobs,
		Pipeline:     cfg.Services.Pipeline,
		Discovery:    cfg.Services.Discovery,
		Messaging:    cfg.Services.Messaging,
		Identity:     cfg.Identity,
		DB:           cfg.DB,
		Cache:        cacheHealth,
		Logger:       logger,
		PageSizeHint: cfg.Config.Discovery.DefaultPageSize,
	})

	return &http.Server{
		Addr:         cfg.Config.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Config.HTTP.ReadTimeout,
		WriteTimeout: cfg.Config.HTTP.WriteTimeout,
	}
}

// RunHTTPServer serves until the context is canceled, then shuts down
// gracefully within the configured timeout.
func RunHTTPServer(ctx context.Context, server *http.Server, cfg config.HTTPConfig, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
