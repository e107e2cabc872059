// Package metrics exposes watcher and workflow counters in the Prometheus
// text format.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/amonks/recur/note"
	"github.com/amonks/recur/project"
	"github.com/amonks/recur/recurrence"
	"github.com/amonks/recur/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of recur_repeats_total.
const (
	OutcomeRepeated      = "repeated"
	OutcomeNotFound      = "not_found"
	OutcomeNoFrontmatter = "no_frontmatter"
	OutcomeNoInterval    = "no_interval"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)

// Metrics holds recur's counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fieldEvents   *prometheus.CounterVec
	completions   prometheus.Counter
	repeats       *prometheus.CounterVec
	droppedEvents prometheus.Counter
}

// New registers recur's counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fieldEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recur_field_events_total",
			Help: "Property field changes seen by the watcher, by widget.",
		}, []string{"widget"}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recur_completions_total",
			Help: "Status fields set to complete.",
		}),
		repeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recur_repeats_total",
			Help: "Attempts to advance a repeating project, by outcome.",
		}, []string{"outcome"}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recur_watch_dropped_events_total",
			Help: "Watcher changes dropped because the dispatch queue was full.",
		}),
	}
	m.registry.MustRegister(m.fieldEvents, m.completions, m.repeats, m.droppedEvents)
	return m
}

// Registry returns the registry holding recur's counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvent counts one field event.
func (m *Metrics) ObserveEvent(ev project.FieldEvent) {
	m.fieldEvents.WithLabelValues(string(ev.Widget)).Inc()
}

// ObserveDropped counts changes the watcher had to drop.
func (m *Metrics) ObserveDropped(n int) {
	m.droppedEvents.Add(float64(n))
}

// CacheStats reports metadata cache hits and misses.
type CacheStats interface {
	Stats() (hits, misses int)
}

// ObserveCache exposes the hit and miss counts of cache.
func (m *Metrics) ObserveCache(cache CacheStats) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "recur_metadata_cache_hits_total",
			Help: "Metadata lookups served from the cache.",
		}, func() float64 {
			hits, _ := cache.Stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "recur_metadata_cache_misses_total",
			Help: "Metadata lookups that read the note.",
		}, func() float64 {
			_, misses := cache.Stats()
			return float64(misses)
		}),
	)
}

// Completions wraps a completion handler so every completion is counted.
func (m *Metrics) Completions(next project.CompletionHandler) project.CompletionHandler {
	return completionCounter{next: next, counter: m.completions}
}

// Repeats wraps a repeater so every attempt is counted by outcome.
func (m *Metrics) Repeats(next project.Repeater) project.Repeater {
	return repeatCounter{next: next, counter: m.repeats}
}

type completionCounter struct {
	next    project.CompletionHandler
	counter prometheus.Counter
}

func (c completionCounter) HandleComplete(ctx context.Context) error {
	c.counter.Inc()
	return c.next.HandleComplete(ctx)
}

type repeatCounter struct {
	next    project.Repeater
	counter *prometheus.CounterVec
}

func (c repeatCounter) Repeat(ctx context.Context, req project.Request) error {
	err := c.next.Repeat(ctx, req)
	c.counter.WithLabelValues(Outcome(err)).Inc()
	return err
}

// Outcome classifies the error returned by a repeat.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeRepeated
	case errors.Is(err, project.ErrNotFound), errors.Is(err, vault.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, project.ErrNoFrontmatter):
		return OutcomeNoFrontmatter
	case errors.Is(err, recurrence.ErrNoInterval):
		return OutcomeNoInterval
	case errors.Is(err, recurrence.ErrInvalidInterval),
		errors.Is(err, recurrence.ErrInvalidDate),
		errors.Is(err, note.ErrInvalidFrontmatter):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Handler serves the counters in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on listener until ctx is done.
func (m *Metrics) Serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errs := make(chan error, 1)
	go func() {
		errs <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
