package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/backlot/backlot-api/config"
	"github.com/backlot/backlot-api/internal/core"
	"github.com/backlot/backlot-api/internal/data"
)

// ServiceContainer holds the constructed services and the shared
// infrastructure handles the HTTP layer needs.
type ServiceContainer struct {
	Jobs      *core.JobService
	Pipeline  *core.PipelineService
	Discovery *core.DiscoveryService
	Messaging *core.MessagingService
	Cache     *data.RedisCacheRepo // nil when redis is not configured
}

// ServicesConfig groups dependencies for BuildServices.
type ServicesConfig struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient // Optional: nil disables caching
	Logger *slog.Logger
}

// BuildServices wires repositories into services. The webhook notifier is
// only constructed when a URL is configured.
func BuildServices(cfg ServicesConfig) (*ServiceContainer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repoCfg := data.RepoConfig{Logger: logger}
	jobRepo := data.NewJobRepo(cfg.DB, repoCfg)
	appRepo := data.NewApplicationRepo(cfg.DB, repoCfg)
	searchRepo := data.NewJobSearchRepo(cfg.DB, repoCfg)
	msgRepo := data.NewMessageRepo(cfg.DB, repoCfg)

	var cache *data.RedisCacheRepo
	var cachePort core.CacheRepository
	if cfg.Redis != nil {
		cache = data.NewRedisCacheRepo(cfg.Redis)
		cachePort = cache
	}

	notifier, err := buildNotifier(cfg.Config.Webhook, logger)
	if err != nil {
		return nil, err
	}

	discovery, err := core.NewDiscoveryService(core.DiscoveryServiceOptions{
		Search: searchRepo,
		Cache:  cachePort,
		Config: core.DiscoveryConfig{FirstPageTTL: cfg.Config.Discovery.FirstPageTTL},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build discovery service: %w", err)
	}

	jobs, err := core.NewJobService(core.JobServiceOptions{
		Jobs:   jobRepo,
		Feed:   discovery,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build job service: %w", err)
	}

	pipeline, err := core.NewPipelineService(core.PipelineServiceOptions{
		Applications: appRepo,
		Jobs:         jobRepo,
		Notifier:     notifier,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline service: %w", err)
	}

	messaging, err := core.NewMessagingService(core.MessagingServiceOptions{
		Messages:     msgRepo,
		Applications: appRepo,
		Cache:        cachePort,
		Config:       core.MessagingConfig{BadgeTTL: cfg.Config.Messaging.BadgeTTL},
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build messaging service: %w", err)
	}

	return &ServiceContainer{
		Jobs:      jobs,
		Pipeline:  pipeline,
		Discovery: discovery,
		Messaging: messaging,
		Cache:     cache,
	}, nil
}

//nolint:ireturn // a nil Notifier disables delivery; the port keeps that optional.
func buildNotifier(cfg config.WebhookConfig, logger *slog.Logger) (core.Notifier, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	notifier, err := core.NewWebhookNotifier(core.WebhookConfig{
		URL:      cfg.URL,
		BodyExpr: cfg.BodyExpr,
		Headers:  cfg.Headers,
		Timeout:  cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build webhook notifier: %w", err)
	}
	return notifier, nil
}
