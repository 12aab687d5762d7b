// Package metrics exposes the core's operational counters, grounded on
// the teacher's use of go.opentelemetry.io metrics (dropped here, see
// DESIGN.md) replaced with the simpler github.com/prometheus/client_golang
// stack the rest of the examples pack (r3e-network-service_layer) wires
// directly. Only IntentsDispatched is incremented, by the dispatcher once
// per call; the other counters are registered but nothing increments them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry groups the core's counters/histograms behind one struct so
// bootstrap can register them once against a *prometheus.Registry.
type Registry struct {
	EventsAppended      *prometheus.CounterVec
	ConcurrencyConflict *prometheus.CounterVec
	IntentsDispatched   *prometheus.CounterVec
	AuthzDecisions      *prometheus.CounterVec
	SubscriberLagged    prometheus.Counter
}

// New constructs and registers the core metrics on reg.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		EventsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_events_appended_total",
			Help: "Events appended to the event store, by aggregate type.",
		}, []string{"aggregate_type"}),
		ConcurrencyConflict: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_concurrency_conflicts_total",
			Help: "Append attempts rejected due to a stale aggregate version.",
		}, []string{"aggregate_type"}),
		IntentsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_intents_dispatched_total",
			Help: "Intents dispatched, partitioned by intent name and outcome.",
		}, []string{"intent", "outcome"}),
		AuthzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_authz_decisions_total",
			Help: "Authorization decisions, partitioned by permission and allowed/denied.",
		}, []string{"permission", "decision"}),
		SubscriberLagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_subscribers_lagged_total",
			Help: "Subscriptions closed because the subscriber fell behind the bounded buffer.",
		}),
	}

	reg.MustRegister(r.EventsAppended, r.ConcurrencyConflict, r.IntentsDispatched, r.AuthzDecisions, r.SubscriberLagged)

	return r
}

// Noop returns a Registry backed by a private registry, safe to use in
// tests that do not want global Prometheus state.
func Noop() *Registry {
	return New(prometheus.NewRegistry())
}
