package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aionixone/portal-api/config"
	httpx "github.com/aionixone/portal-api/internal/http"
)

// BuildPortalHandler assembles the portal router with its middleware chain.
// Order: Recover -> RequestID -> Logging -> Metrics -> Router.
func BuildPortalHandler(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) http.Handler {
	router := httpx.NewRouter(httpx.RouterServices{
		Portal: services.Portal,
		Cookie: httpx.CookieConfig{
			Domain: cfg.HTTP.CookieDomain,
			Secure: !cfg.IsDev,
		},
		Logger: logger,
	})

	h := httpx.Metrics(services.Metrics)(router)
	h = httpx.Logging(logger)(h)
	h = httpx.RequestID()(h)
	h = httpx.Recover(logger)(h)

	return h
}

func newServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// RunServicesWithShutdown starts all enabled services and blocks until a
// shutdown signal arrives or a server fails, then drains with a 10s window.
func RunServicesWithShutdown(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("app config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var servers []*http.Server
	if cfg.IsHTTPServerEnabled() {
		servers = append(servers, newServer(cfg.HTTP.Addr, BuildPortalHandler(cfg, services, logger)))
	}
	if cfg.IsDevLicenseEnabled() && services.DevLicense != nil {
		handler := httpx.Recover(logger)(services.DevLicense.Handler())
		servers = append(servers, newServer(cfg.DevLicense.Addr, handler))
	}
	if len(servers) == 0 {
		return errors.New("no services enabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("starting HTTP server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var shutdownErr error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				shutdownErr = errors.Join(shutdownErr, err)
			}
		}
		return shutdownErr
	})

	err := g.Wait()
	services.Close(logger)
	return err
}
