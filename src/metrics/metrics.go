package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors for the service. A nil *Metrics is
// valid and records nothing, which keeps tests free of registry setup.
type Metrics struct {
	registry *prometheus.Registry

	dispatches       *prometheus.CounterVec
	providerAttempts *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheSize        prometheus.Gauge
	rateLimited      *prometheus.CounterVec
	tokens           *prometheus.CounterVec
	cost             *prometheus.CounterVec

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpRateLimited *prometheus.CounterVec
}

func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yahmi_dispatches_total",
			Help: "Completion dispatches by tier and outcome",
		}, []string{"tier", "outcome"}),

		providerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yahmi_provider_attempts_total",
			Help: "Provider attempts by provider, service and result",
		}, []string{"provider", "service", "result"}),

		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yahmi_provider_latency_seconds",
			Help:    "Provider call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider"}),

		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yahmi_completion_cache_hits_total",
			Help: "Completion cache hits",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yahmi_completion_cache_misses_total",
			Help: "Completion cache misses",
		}),

		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "yahmi_completion_cache_entries",
			Help: "Current number of completion cache entries",
		}),

		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yahmi_service_rate_limited_total",
			Help: "Times a service was found at its per-minute ceiling",
		}, []string{"service"}),

		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yahmi_estimated_tokens_total",
			Help: "Estimated tokens by service and direction",
		}, []string{"service", "direction"}),

		cost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yahmi_estimated_cost_usd_total",
			Help: "Estimated provider cost in USD by service",
		}, []string{"service"}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yahmi_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yahmi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		httpRateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yahmi_http_rate_limited_total",
			Help: "HTTP requests rejected by a request limiter",
		}, []string{"limiter"}),
	}

	collectors := []prometheus.Collector{
		m.dispatches,
		m.providerAttempts,
		m.providerLatency,
		m.cacheHits,
		m.cacheMisses,
		m.cacheSize,
		m.rateLimited,
		m.tokens,
		m.cost,
		m.httpRequests,
		m.httpDuration,
		m.httpRateLimited,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) RecordDispatch(tier, outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(tier, outcome).Inc()
}

func (m *Metrics) RecordAttempt(provider, service, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.providerAttempts.WithLabelValues(provider, service, result).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) RecordCacheSize(size int) {
	if m == nil {
		return
	}
	m.cacheSize.Set(float64(size))
}

func (m *Metrics) RecordRateLimited(service string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(service).Inc()
}

func (m *Metrics) RecordRequestRateLimited(limiter string) {
	if m == nil {
		return
	}
	m.httpRateLimited.WithLabelValues(limiter).Inc()
}

func (m *Metrics) RecordUsage(service string, inputTokens, outputTokens int, cost float64) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues(service, "input").Add(float64(inputTokens))
	m.tokens.WithLabelValues(service, "output").Add(float64(outputTokens))
	m.cost.WithLabelValues(service).Add(cost)
}

func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
