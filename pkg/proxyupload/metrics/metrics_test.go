package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveGrant(t *testing.T) {
	m := New()

	m.ObserveGrant(OutcomeIssued)
	m.ObserveGrant(OutcomeIssued)
	m.ObserveGrant(OutcomeUnauthorized)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.grants.WithLabelValues(OutcomeIssued)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.grants.WithLabelValues(OutcomeUnauthorized)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.grants.WithLabelValues(OutcomeRejected)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveGrant(OutcomeIssued)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	w := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sign", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sign", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("400", http.MethodGet)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `proxyupload_grants_total{outcome="issued"} 0`)
	assert.Contains(t, w.Body.String(), `proxyupload_http_requests_total{code="400",method="GET"} 2`)
}
