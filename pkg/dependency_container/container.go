package dependency_container

import (
	"fmt"
	"time"

	appGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/app/guardrail"
	"github.com/NeuralTrust/ConsensusSentry/pkg/config"
	domainGuardrail "github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	handlers "github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/channel"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/cache/subscriber"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/classifier"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/database"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/httpx"
	"github.com/NeuralTrust/ConsensusSentry/pkg/infra/repository"
	"github.com/NeuralTrust/ConsensusSentry/pkg/middleware"
	"github.com/NeuralTrust/ConsensusSentry/pkg/moderation"
	"github.com/NeuralTrust/ConsensusSentry/pkg/version"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Container struct {
	InstanceID          string
	DB                  *database.DB
	Cache               cache.Client
	RedisListener       cache.EventListener
	EventsChannel       channel.Channel
	GuardrailRepository domainGuardrail.Repository
	JWTManager          jwt.Manager
	ModerationClient    moderation.Client
	Classifier          classifier.Classifier
	HandlerTransport    handlers.HandlerTransport
	MiddlewareTransport middleware.Transport
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// DB is required when the registry store is postgres.
	DB *database.DB
}

// NewContainer wires the registry from configuration. Redis is optional: when
// it is not configured guardrail reads go straight to the store.
func NewContainer(di ContainerDI) (*Container, error) {
	c := &Container{
		InstanceID:    uuid.NewString(),
		DB:            di.DB,
		EventsChannel: channel.GuardrailEvents,
	}

	repo, err := newRepository(di)
	if err != nil {
		return nil, err
	}
	c.GuardrailRepository = repo

	var (
		guardrailCache = appGuardrail.NewNoopCache()
		publisher      cache.EventPublisher
	)
	if di.Cfg.Redis.Enabled() {
		cacheInstance, err := cache.NewClient(cache.Config{
			Host:     di.Cfg.Redis.Host,
			Port:     di.Cfg.Redis.Port,
			Password: di.Cfg.Redis.Password,
			DB:       di.Cfg.Redis.DB,
			TLS:      di.Cfg.Redis.TLS,
			TTL:      di.Cfg.Redis.CacheTTL(),
		}, di.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		c.Cache = cacheInstance
		guardrailCache = cacheInstance
		publisher = cache.NewRedisEventPublisher(cacheInstance, c.EventsChannel)

		c.RedisListener = cache.NewRedisEventListener(di.Logger, cacheInstance)
		cache.RegisterEventSubscriber(
			c.RedisListener,
			subscriber.NewGuardrailChangedEventSubscriber(di.Logger, cacheInstance, c.InstanceID),
		)
	}

	c.JWTManager = jwt.NewJwtManager(&di.Cfg.Server)

	c.ModerationClient, err = newModerationClient(di)
	if err != nil {
		return nil, err
	}
	c.Classifier = classifier.NewClassifier(
		classifier.Config{
			BaseURL: di.Cfg.Classifier.BaseURL,
			Timeout: di.Cfg.Classifier.Timeout(),
		},
		httpx.NewFastHTTPClient(
			httpx.WithTimeout(di.Cfg.Classifier.Timeout()),
			httpx.WithUserAgent(version.UserAgent()),
		),
		di.Logger,
	)

	invalidate := appGuardrail.NewInvalidateGuardrailCache(di.Logger, guardrailCache, publisher, c.InstanceID)
	finder := appGuardrail.NewFinder(di.Logger, repo, guardrailCache)
	governance := appGuardrail.NewGovernance(di.Logger, repo, invalidate, nil)

	c.HandlerTransport = handlers.HandlerTransport{
		CreateGuardrailHandler:  handlers.NewCreateGuardrailHandler(di.Logger, appGuardrail.NewCreator(di.Logger, repo)),
		ProposeRuleHandler:      handlers.NewProposeRuleHandler(di.Logger, appGuardrail.NewRuleProposer(di.Logger, repo, invalidate)),
		GetGuardrailHandler:     handlers.NewGetGuardrailHandler(di.Logger, finder),
		ListMyGuardrailsHandler: handlers.NewListMyGuardrailsHandler(di.Logger, finder),
		ListGuardrailsHandler:   handlers.NewListGuardrailsHandler(di.Logger, finder),
		AdvanceToVotingHandler:  handlers.NewAdvanceToVotingHandler(di.Logger, governance),
		CastVoteHandler:         handlers.NewCastVoteHandler(di.Logger, governance),
		FinalizeRuleHandler:     handlers.NewFinalizeRuleHandler(di.Logger, governance),
		GetSummaryHandler:       handlers.NewGetSummaryHandler(di.Logger, appGuardrail.NewSummaryBuilder(finder)),
		ModerationCheckHandler:  handlers.NewModerationCheckHandler(di.Logger, c.ModerationClient),
		ModerationBatchHandler:  handlers.NewModerationBatchHandler(di.Logger, c.ModerationClient),
		ModerationHealthHandler: handlers.NewModerationHealthHandler(di.Logger, c.ModerationClient),
		ClassifyPromptHandler:   handlers.NewClassifyPromptHandler(di.Logger, c.Classifier),
		GetVersionHandler:       handlers.NewGetVersionHandler(di.Logger),
	}

	c.MiddlewareTransport = middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(di.Logger),
		CORSMiddleware:         middleware.NewCORSMiddleware(di.Cfg.Server.CORSOrigins),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(di.Logger),
		IdentityMiddleware:     middleware.NewIdentityMiddleware(di.Logger, c.JWTManager),
	}
	return c, nil
}

func newRepository(di ContainerDI) (domainGuardrail.Repository, error) {
	switch di.Cfg.Registry.Store {
	case config.StorePostgres:
		if di.DB == nil {
			return nil, fmt.Errorf("registry store %q requires a database connection", config.StorePostgres)
		}
		return repository.NewGuardrailRepository(di.DB.DB), nil
	default:
		repo, err := repository.NewMemoryGuardrailRepository(di.Logger, di.Cfg.Registry.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory store: %w", err)
		}
		return repo, nil
	}
}

func newModerationClient(di ContainerDI) (moderation.Client, error) {
	mc := di.Cfg.Moderation
	options := []moderation.ClientOption{
		moderation.WithLogger(di.Logger),
		moderation.WithHTTPClient(httpx.NewFastHTTPClient(
			httpx.WithTimeout(mc.Timeout()),
			httpx.WithUserAgent(version.UserAgent()),
		)),
	}
	if mc.CircuitBreaker.Enabled {
		options = append(options, moderation.WithCircuitBreaker(httpx.NewCircuitBreaker(
			"moderation",
			time.Duration(mc.CircuitBreaker.OpenSeconds)*time.Second,
			uint32(mc.CircuitBreaker.MaxFailures), // #nosec G115
		)))
	}
	client, err := moderation.NewClient(moderation.Options{
		APIKey:      mc.APIKey,
		Environment: mc.Environment,
		BaseURL:     mc.BaseURL,
		Timeout:     mc.Timeout(),
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize moderation client: %w", err)
	}
	return client, nil
}
