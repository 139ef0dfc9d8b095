package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	m.KeyIssued()
	m.KeyRevoked()
	m.KeyValidated("ok")
	m.CatalogReplaced(10)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if got := m.Middleware("svc", RoutePattern)(h); got == nil {
		t.Fatal("Middleware returned nil handler")
	}
}

func TestCounters(t *testing.T) {
	_, m := NewRegistry()

	m.KeyIssued()
	m.KeyIssued()
	m.KeyRevoked()
	m.KeyValidated("expired")
	m.CatalogReplaced(42)

	if got := testutil.ToFloat64(m.KeysIssued); got != 2 {
		t.Errorf("KeysIssued = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.KeysRevoked); got != 1 {
		t.Errorf("KeysRevoked = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.KeyValidations.WithLabelValues("expired")); got != 1 {
		t.Errorf("expired validations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CatalogSize); got != 42 {
		t.Errorf("CatalogSize = %v, want 42", got)
	}
	if got := testutil.ToFloat64(m.Regenerations); got != 1 {
		t.Errorf("Regenerations = %v, want 1", got)
	}
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	_, m := NewRegistry()

	r := chi.NewRouter()
	r.Use(m.Middleware("svc", RoutePattern))
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/api/products/1", "/api/products/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(m.Requests.WithLabelValues("svc", http.MethodGet, "/api/products/{id}", "404"))
	if got != 2 {
		t.Errorf("requests for route pattern = %v, want 2", got)
	}
}

func TestRoutePatternWithoutRouter(t *testing.T) {
	if got := RoutePattern(httptest.NewRequest(http.MethodGet, "/x", nil)); got != "unmatched" {
		t.Errorf("RoutePattern = %q, want unmatched", got)
	}
}
