// Package metrics exposes Prometheus instrumentation for the bowling server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Throw outcomes recorded on bowling_throws_total.
const (
	OutcomeAccepted   = "accepted"
	OutcomeInvalidPin = "invalid_pin_count"
	OutcomeGameOver   = "game_over"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	throws        *prometheus.CounterVec
	gamesStarted  prometheus.Counter
	gamesFinished prometheus.Counter
	requests      *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		throws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bowling",
			Name:      "throws_total",
			Help:      "Throws submitted, by outcome.",
		}, []string{"outcome"}),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bowling",
			Name:      "games_started_total",
			Help:      "Games created.",
		}),
		gamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bowling",
			Name:      "games_finished_total",
			Help:      "Games in which every bowler finished the tenth frame.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bowling",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.Registry.MustRegister(
		m.throws, m.gamesStarted, m.gamesFinished, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Throw(outcome string) { m.throws.WithLabelValues(outcome).Inc() }
func (m *Metrics) GameStarted()         { m.gamesStarted.Inc() }
func (m *Metrics) GameFinished()        { m.gamesFinished.Inc() }

// Middleware records request latency labelled with the chi route pattern,
// so /games/{id} is one series rather than one per game.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
