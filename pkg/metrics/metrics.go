// Package metrics exposes the mutation and degraded-state counters.
package metrics

import (
	"expvar"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDenied  = "denied"
	ResultInvalid = "invalid"
)

// expvar maps are process-wide; every Recorder mirrors into them so
// /debug/vars shows the same totals as /metrics.
var (
	debugMutations = expvar.NewMap("staylo_mutations")
	debugDegraded  = expvar.NewMap("staylo_degraded")
)

// Recorder counts orchestrator outcomes. A nil *Recorder is a no-op.
type Recorder struct {
	mutations *prometheus.CounterVec
	degraded  *prometheus.CounterVec
}

// New creates the counters and registers them on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staylo_mutations_total",
			Help: "Listing and review mutations by operation and result.",
		}, []string{"operation", "result"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staylo_degraded_total",
			Help: "Degraded states such as orphaned reviews and geocode fallbacks.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(r.mutations, r.degraded)
	}
	return r
}

func (r *Recorder) Mutation(operation, result string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(operation, result).Inc()
	debugMutations.Add(operation+"."+result, 1)
}

func (r *Recorder) Degraded(kind string) {
	if r == nil {
		return
	}
	r.degraded.WithLabelValues(kind).Inc()
	debugDegraded.Add(kind, 1)
}

// MutationCount reads a counter value; used by tests and the debug module.
func (r *Recorder) MutationCount(operation, result string) float64 {
	if r == nil {
		return 0
	}
	return counterValue(r.mutations.WithLabelValues(operation, result))
}

func (r *Recorder) DegradedCount(kind string) float64 {
	if r == nil {
		return 0
	}
	return counterValue(r.degraded.WithLabelValues(kind))
}
