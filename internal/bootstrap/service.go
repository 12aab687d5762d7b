package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	rabbitconn "github.com/lerianstudio/eventledger/internal/adapters/rabbitmq"
	dbconn "github.com/lerianstudio/eventledger/internal/adapters/postgres"
	redisconn "github.com/lerianstudio/eventledger/internal/adapters/redis"
	mongoconn "github.com/lerianstudio/eventledger/internal/adapters/mongodb"
	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/authn"
	"github.com/lerianstudio/eventledger/internal/authz"
	"github.com/lerianstudio/eventledger/internal/audit"
	"github.com/lerianstudio/eventledger/internal/container"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	eventstorepg "github.com/lerianstudio/eventledger/internal/eventstore/postgres"
	eventstoremem "github.com/lerianstudio/eventledger/internal/eventstore/memory"
	"github.com/lerianstudio/eventledger/internal/intent"
	"github.com/lerianstudio/eventledger/internal/platform/clock"
	"github.com/lerianstudio/eventledger/internal/platform/log"
	"github.com/lerianstudio/eventledger/internal/platform/metrics"
	"github.com/lerianstudio/eventledger/internal/projection"
	projectionpg "github.com/lerianstudio/eventledger/internal/projection/postgres"
	"github.com/lerianstudio/eventledger/internal/subscription"
)

// Service composes every core component needed to serve the ledger:
// the Dispatcher is the sole write path, the Subscription Hub and
// Projection Manager are the two read paths tailing the same log.
type Service struct {
	Config     *Config
	Logger     log.Logger
	Store      eventstore.Store
	Registry   *intent.Registry
	Dispatcher *intent.Dispatcher
	Hub        *subscription.Hub
	Projections *projection.Manager
	Authn      *authn.Engine
	JWT        *authn.JWTVerifier
	Metrics    *metrics.Registry
	Gatherer   prometheus.Gatherer

	rabbit *rabbitconn.Publisher
}

// New builds a Service from cfg, wiring storage, authorization, audit,
// intent dispatch, projections and subscriptions the way
// internal/bootstrap/service.go's teacher equivalent wires onboarding
// and transaction, minus the multi-tenant and telemetry layers this
// spec's scope drops.
func New(ctx context.Context, cfg *Config, logger log.Logger) (*Service, error) {
	baseStore, err := newEventStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: event store: %w", err)
	}

	hub := subscription.NewHub(baseStore, logger)
	store := subscription.NewNotifyingStore(baseStore, hub)

	promRegistry := prometheus.NewRegistry()
	metricsRegistry := metrics.New(promRegistry)

	agreementRegistry := agreement.DefaultRegistry()
	agreements := agreement.NewLifecycle(store, agreementRegistry)
	containers := container.NewManager(store)
	authzEngine := authz.NewEngine(store, agreementRegistry)
	auditLogger := audit.NewLogger(store)

	watermarks, err := newWatermarkStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: watermark store: %w", err)
	}

	projections := projection.NewManager(store, watermarks, logger)
	realmsProjection := projection.NewRealmsProjection()
	apiKeysProjection := projection.NewApiKeysProjection()
	projections.Register(realmsProjection)
	projections.Register(apiKeysProjection)

	var mongoApiKeys *authn.MongoApiKeysProjection

	if cfg.MongoEnabled {
		mongoConn := &mongoconn.Connection{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Logger: logger}
		mongoApiKeys = authn.NewMongoApiKeysProjection(mongoConn)
		projections.Register(mongoApiKeys)
	}

	idempotency, err := newIdempotencyStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: idempotency store: %w", err)
	}

	registry := intent.BuildRegistry()

	dispatcher := intent.NewDispatcher(
		registry,
		store,
		authzEngine,
		auditLogger,
		agreements,
		agreementRegistry,
		containers,
		clock.System{},
		logger,
		intent.WithIdempotencyStore(idempotency),
		intent.WithMetrics(metricsRegistry),
		intent.WithRetention(cfg.IdempotencyRetention),
		intent.WithProjections(realmsProjection, apiKeysProjection),
	)

	authnEngine := authn.NewEngine(store, apiKeysProjection)
	if mongoApiKeys != nil {
		authnEngine = authnEngine.WithMongoFallback(mongoApiKeys)
	}

	var jwtVerifier *authn.JWTVerifier
	if cfg.JWTSecret != "" {
		jwtVerifier = authn.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	}

	svc := &Service{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Registry:    registry,
		Dispatcher:  dispatcher,
		Hub:         hub,
		Projections: projections,
		Authn:       authnEngine,
		JWT:         jwtVerifier,
		Metrics:     metricsRegistry,
		Gatherer:    promRegistry,
	}

	if cfg.RabbitMQEnabled {
		conn := &rabbitconn.Connection{URI: cfg.RabbitMQURL}

		publisher := rabbitconn.NewPublisher(conn, logger)
		if err := publisher.DeclareExchange(); err != nil {
			return nil, fmt.Errorf("bootstrap: rabbitmq exchange: %w", err)
		}

		svc.rabbit = publisher
	}

	if err := projections.CatchUp(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: projection catch-up: %w", err)
	}

	if err := svc.startLiveFeed(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: live feed: %w", err)
	}

	return svc, nil
}

// startLiveFeed subscribes to the hub from the current tail and feeds
// every live event to the Projection Manager and, if configured, the
// RabbitMQ mirror. It runs for the lifetime of the process.
func (s *Service) startLiveFeed(ctx context.Context) error {
	tail, err := s.Store.GetCurrentSequence(ctx)
	if err != nil {
		return err
	}

	sub, err := s.Hub.Subscribe(ctx, tail+1)
	if err != nil {
		return err
	}

	go func() {
		for e := range sub.Events {
			s.Projections.ApplyLive(ctx, e)

			if s.rabbit != nil {
				s.rabbit.Publish(ctx, e)
			}
		}
	}()

	return nil
}

func newEventStore(cfg *Config, logger log.Logger) (eventstore.Store, error) {
	switch cfg.EventStoreDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required when EVENT_STORE_DRIVER=postgres")
		}

		conn := &dbconn.Connection{ConnectionString: cfg.PostgresDSN}

		return eventstorepg.New(conn), nil
	default:
		logger.Warn("event store driver is memory; events do not survive a restart")

		return eventstoremem.New(), nil
	}
}

func newWatermarkStore(_ context.Context, cfg *Config, _ log.Logger) (projection.WatermarkStore, error) {
	if cfg.EventStoreDriver == "postgres" {
		conn := &dbconn.Connection{ConnectionString: cfg.PostgresDSN}
		return projectionpg.New(conn), nil
	}

	return projection.NewMemoryWatermarkStore(), nil
}

func newIdempotencyStore(cfg *Config, logger log.Logger) (intent.IdempotencyStore, error) {
	if cfg.RedisURL == "" {
		return intent.NewMemoryIdempotencyStore(), nil
	}

	conn := &redisconn.Connection{ConnectionString: cfg.RedisURL, Logger: logger}

	return redisconn.NewIdempotencyStore(conn), nil
}
