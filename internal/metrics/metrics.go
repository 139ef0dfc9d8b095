package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	labelService = "service"
	labelMethod  = "method"
	labelPath    = "path"
	labelStatus  = "status"
	labelResult  = "result"

	defaultStatusCode = http.StatusOK
)

// Metrics holds every collector the API exports. A nil *Metrics is valid and
// records nothing, so services can be built without a registry in tests.
type Metrics struct {
	Requests       *prometheus.CounterVec
	Latency        *prometheus.HistogramVec
	KeysIssued     prometheus.Counter
	KeysRevoked    prometheus.Counter
	KeyValidations *prometheus.CounterVec
	CatalogSize    prometheus.Gauge
	Regenerations  prometheus.Counter
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{labelService, labelMethod, labelPath, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP latency",
			},
			[]string{labelService, labelMethod, labelPath},
		),
		KeysIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_api_keys_issued_total",
			Help: "API keys issued",
		}),
		KeysRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_api_keys_revoked_total",
			Help: "API keys explicitly revoked",
		}),
		KeyValidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_api_key_validations_total",
				Help: "API key validations by result",
			},
			[]string{labelResult},
		),
		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_catalog_products",
			Help: "Products currently in the catalog",
		}),
		Regenerations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_catalog_regenerations_total",
			Help: "Successful catalog replacements",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.Latency,
		m.KeysIssued,
		m.KeysRevoked,
		m.KeyValidations,
		m.CatalogSize,
		m.Regenerations,
	)
	return m
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors alongside the API metrics.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, New(reg)
}

func (m *Metrics) KeyIssued() {
	if m != nil {
		m.KeysIssued.Inc()
	}
}

func (m *Metrics) KeyRevoked() {
	if m != nil {
		m.KeysRevoked.Inc()
	}
}

func (m *Metrics) KeyValidated(result string) {
	if m != nil {
		m.KeyValidations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) CatalogReplaced(size int) {
	if m != nil {
		m.CatalogSize.Set(float64(size))
		m.Regenerations.Inc()
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (m *Metrics) Middleware(service string, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{
				ResponseWriter: w,
				status:         defaultStatusCode,
			}

			start := time.Now()
			next.ServeHTTP(sw, r)

			path := pathLabel(r)
			m.Latency.WithLabelValues(service, r.Method, path).
				Observe(time.Since(start).Seconds())

			m.Requests.WithLabelValues(service, r.Method, path, strconv.Itoa(sw.status)).
				Inc()
		})
	}
}

// RoutePattern labels a request with its chi route pattern so path
// parameters do not explode label cardinality.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
