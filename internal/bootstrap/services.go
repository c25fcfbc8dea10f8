package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/aionixone/portal-api/config"
	"github.com/aionixone/portal-api/internal/adapters/devlicense"
	"github.com/aionixone/portal-api/internal/adapters/licenseserver"
	"github.com/aionixone/portal-api/internal/observability/statsd"
	"github.com/aionixone/portal-api/internal/service"
)

// ServiceDeps contains dependencies for building the service container.
type ServiceDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
}

// ServiceContainer holds all constructed services and adapters.
type ServiceContainer struct {
	Portal  *service.PortalService
	Metrics *statsd.Client
	// DevLicense is nil unless the dev-license service mode is enabled.
	DevLicense *devlicense.Server
	// redisClient is retained only for Close during shutdown.
	redisClient redis.UniversalClient
}

// NewServices builds the service container from configuration.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init statsd client: %w", err)
	}

	remote, err := licenseserver.NewClient(licenseserver.Config{
		BaseURL: cfg.LicenseServer.URL,
		Timeout: cfg.LicenseServer.Timeout,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init license server client: %w", err)
	}

	container := ServiceContainer{
		Portal: service.NewPortalService(service.PortalServiceOptions{
			LicenseServer: remote,
			Metrics:       metrics,
			Logger:        logger,
		}),
		Metrics: metrics,
	}

	if cfg.IsDevLicenseEnabled() {
		devServer, redisClient := buildDevLicense(cfg, logger)
		container.DevLicense = devServer
		container.redisClient = redisClient
	}

	return container, nil
}

// buildDevLicense constructs the dev license server, optionally backed by Redis.
func buildDevLicense(cfg *config.AppConfig, logger *slog.Logger) (*devlicense.Server, redis.UniversalClient) {
	devCfg := devlicense.Config{
		Organization: cfg.DevLicense.Organization,
		CodeTTL:      cfg.DevLicense.CodeTTL,
		SessionTTL:   cfg.DevLicense.SessionTTL,
		Logger:       logger,
	}

	var redisClient redis.UniversalClient
	if cfg.DevLicense.UseRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := devlicense.NewRedisStore(redisClient)
		devCfg.Codes = store
		devCfg.Sessions = store
		logger.Info("dev license server using redis store", "addr", cfg.Redis.Addr)
	}

	return devlicense.NewServer(devCfg), redisClient
}

// Close releases container-held resources (metrics socket, redis connection).
func (c *ServiceContainer) Close(logger *slog.Logger) {
	if err := c.Metrics.Close(); err != nil {
		logger.Error("close statsd client failed", "error", err)
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			logger.Error("close redis failed", "error", err)
		}
	}
}
