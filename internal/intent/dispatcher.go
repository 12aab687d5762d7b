package intent

import (
	"context"
	"time"

	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/authz"
	"github.com/lerianstudio/eventledger/internal/audit"
	"github.com/lerianstudio/eventledger/internal/container"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/clock"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/platform/log"
	"github.com/lerianstudio/eventledger/internal/platform/metrics"
	"github.com/lerianstudio/eventledger/internal/projection"
)

// Request is the decoded form of spec.md §6.1's wire protocol body.
type Request struct {
	Intent         string
	Realm          *id.ID
	Actor          domain.Actor
	Timestamp      int64
	IdempotencyKey string
	Payload        any
}

// Dispatcher implements spec.md §4.6's five-step pipeline.
type Dispatcher struct {
	registry     *Registry
	store        eventstore.Store
	authzEngine  *authz.Engine
	auditLogger  *audit.Logger
	agreements   *agreement.Lifecycle
	agreementReg *agreement.Registry
	containers   *container.Manager
	realms       *projection.RealmsProjection
	apiKeys      *projection.ApiKeysProjection
	idempotency  IdempotencyStore
	clock        clock.Clock
	logger       log.Logger
	metrics      *metrics.Registry
	retention    time.Duration
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithIdempotencyStore overrides the default in-memory idempotency
// store (e.g. with a redis-backed one for multi-node deployments).
func WithIdempotencyStore(store IdempotencyStore) Option {
	return func(d *Dispatcher) { d.idempotency = store }
}

// WithMetrics attaches an operational metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(d *Dispatcher) { d.metrics = reg }
}

// WithRetention overrides the idempotency retention window.
func WithRetention(retention time.Duration) Option {
	return func(d *Dispatcher) { d.retention = retention }
}

// WithProjections attaches the read models the Query-category handlers
// serve from (spec.md §9: list/lookup intents must not fall back to a
// log scan in normal operation).
func WithProjections(realms *projection.RealmsProjection, apiKeys *projection.ApiKeysProjection) Option {
	return func(d *Dispatcher) {
		d.realms = realms
		d.apiKeys = apiKeys
	}
}

// NewDispatcher builds a Dispatcher over its dependencies.
func NewDispatcher(
	registry *Registry,
	store eventstore.Store,
	authzEngine *authz.Engine,
	auditLogger *audit.Logger,
	agreements *agreement.Lifecycle,
	agreementReg *agreement.Registry,
	containers *container.Manager,
	clk clock.Clock,
	logger log.Logger,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		registry:     registry,
		store:        store,
		authzEngine:  authzEngine,
		auditLogger:  auditLogger,
		agreements:   agreements,
		agreementReg: agreementReg,
		containers:   containers,
		idempotency:  NewMemoryIdempotencyStore(),
		clock:        clk,
		logger:       logger,
		metrics:      metrics.Noop(),
		retention:    DefaultRetention,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// actorKey derives the per-actor identity idempotency results are keyed
// under (spec.md §4.6: "records it per actor").
func actorKey(actor domain.Actor) string {
	switch actor.Type {
	case domain.ActorEntity:
		return "entity:" + string(actor.EntityID)
	case domain.ActorSystem:
		return "system:" + actor.SystemID
	default:
		return "anonymous"
	}
}

// Dispatch runs the full pipeline of spec.md §4.6 for one request.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	start := d.clock.NowMillis()

	if req.IdempotencyKey != "" {
		if cached, ok, err := d.idempotency.Get(ctx, actorKey(req.Actor), req.IdempotencyKey); err == nil && ok {
			return cached, nil
		}
	}

	result := d.dispatchOnce(ctx, req, start)

	if req.IdempotencyKey != "" {
		_ = d.idempotency.Put(ctx, actorKey(req.Actor), req.IdempotencyKey, result, d.retention)
	}

	return result, nil
}

func (d *Dispatcher) dispatchOnce(ctx context.Context, req Request, start int64) Result {
	now := req.Timestamp
	if now == 0 {
		now = d.clock.NowMillis()
	}

	meta := Meta{ProcessedAt: now, IdempotencyKey: req.IdempotencyKey}

	// Step 1: resolve.
	def, ok := d.registry.Lookup(req.Intent)
	if !ok {
		d.observe(req.Intent, "not_found")

		return fail(meta, start, d.clock, apperr.IntentNotFound(req.Intent))
	}

	// Step 2: validate.
	if def.PayloadType != nil {
		if err := validate.Struct(req.Payload); err != nil {
			d.observe(req.Intent, "validation_failed")

			return fail(meta, start, d.clock, apperr.ValidationFailed(err.Error()))
		}
	}

	causation := &domain.Causation{CommandID: string(id.New())}

	var allEvents []domain.Event

	// Step 3: authorize.
	if len(def.RequiredPermissions) > 0 && !req.Actor.IsSystem() {
		for _, permission := range def.RequiredPermissions {
			decision, err := d.authzEngine.Authorize(ctx, authz.Request{
				Actor:     req.Actor,
				Action:    permission,
				Resource:  def.Resource,
				Realm:     req.Realm,
				Timestamp: now,
			})
			if err != nil {
				d.observe(req.Intent, "authz_error")

				return fail(meta, start, d.clock, apperr.Wrap(apperr.CodeForbidden, "authorization check failed", err))
			}

			auditEvent, auditErr := d.auditLogger.Record(ctx, req.Actor, audit.DecisionPayload{
				Intent:              req.Intent,
				Permission:          def.Resource + ":" + permission,
				Decision:            decisionLabel(decision.Allowed),
				Reason:              decision.Reason,
				EvaluatedAgreements: idsToStrings(decision.EvaluatedAgreements),
				GrantedBy:           idsToStrings(decision.GrantedBy),
			}, causation, now)
			if auditErr != nil && d.logger != nil {
				// Best-effort per spec.md §7: the audit failing must not
				// abort the underlying action; it is logged operationally
				// instead.
				d.logger.Errorf("audit log append failed: %v", auditErr)
			} else if auditErr == nil {
				allEvents = append(allEvents, auditEvent)
			}

			if !decision.Allowed {
				d.observe(req.Intent, "forbidden")

				return failWithEvents(meta, start, d.clock, allEvents, apperr.Forbidden("missing permission "+def.Resource+":"+permission))
			}
		}
	}

	// Step 4: invoke handler.
	hctx := &HandlerContext{
		Store:             d.store,
		Agreements:        d.agreements,
		AgreementRegistry: d.agreementReg,
		Containers:        d.containers,
		Authz:             d.authzEngine,
		Clock:             d.clock,
		Logger:            d.logger,
		Realms:            d.realms,
		ApiKeys:           d.apiKeys,
		Actor:             req.Actor,
		Causation:         causation,
		Now:               now,
		Dispatch:          d.Dispatch,
	}

	outcome, affordances, err := def.Handler(ctx, hctx, req.Payload)
	allEvents = append(allEvents, hctx.lastEvents...)

	if err != nil {
		d.observe(req.Intent, "handler_error")

		return failWithEvents(meta, start, d.clock, allEvents, err)
	}

	d.observe(req.Intent, "success")

	// Step 5: collect result.
	meta.ProcessingTimeMs = d.clock.NowMillis() - start

	return Result{
		Success:     true,
		Outcome:     outcome,
		Events:      eventRefs(allEvents),
		Affordances: affordances,
		Meta:        meta,
		Data:        hctx.resultData,
	}
}

func (d *Dispatcher) observe(intentName, outcome string) {
	if d.metrics != nil {
		d.metrics.IntentsDispatched.WithLabelValues(intentName, outcome).Inc()
	}
}

func decisionLabel(allowed bool) string {
	if allowed {
		return "Granted"
	}

	return "Denied"
}

func idsToStrings(ids []id.ID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = string(v)
	}

	return out
}

func fail(meta Meta, start int64, clk clock.Clock, err error) Result {
	return failWithEvents(meta, start, clk, nil, err)
}

func failWithEvents(meta Meta, start int64, clk clock.Clock, events []domain.Event, err error) Result {
	meta.ProcessingTimeMs = clk.NowMillis() - start

	appErr, _ := apperr.As(err)
	detail := ErrorDetail{Code: "STORAGE_ERROR", Message: err.Error()}

	if appErr != nil {
		detail = ErrorDetail{Code: codeToWireCode(appErr.Code), Message: appErr.Message, Field: appErr.Field}
	}

	return Result{
		Success: false,
		Outcome: OutcomeNothing,
		Events:  eventRefs(events),
		Errors:  []ErrorDetail{detail},
		Meta:    meta,
	}
}

func codeToWireCode(c apperr.Code) string {
	switch c {
	case apperr.CodeIntentNotFound:
		return "INTENT_NOT_FOUND"
	case apperr.CodeValidationFailed:
		return "VALIDATION_FAILED"
	case apperr.CodeForbidden:
		return "FORBIDDEN"
	case apperr.CodeConcurrencyConflict:
		return "CONCURRENCY_CONFLICT"
	case apperr.CodeNotFound:
		return "NOT_FOUND"
	case apperr.CodePhysicsViolation:
		return "PHYSICS_VIOLATION"
	case apperr.CodeAlreadyExists:
		return "ALREADY_EXISTS"
	case apperr.CodeAgreementLifecycle:
		return "AGREEMENT_LIFECYCLE_INVALID"
	case apperr.CodeUnauthenticated:
		return "UNAUTHENTICATED"
	default:
		return "STORAGE_ERROR"
	}
}
