package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordAndExpose(t *testing.T) {
	m := New()

	m.RecordRequest("POST", "/search", "200")
	m.RecordRequest("POST", "/search", "200")
	m.RecordCandidate("success")
	m.RecordCandidate("failed")
	m.SetCircuitBreakerState("duckduckgo", "open")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/search", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.candidatesTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.circuitBreakerState.WithLabelValues("duckduckgo")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "searchagent_http_requests_total"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest("GET", "/", "200")
		m.RecordSearch("complete", 1)
		m.RecordCandidate("success")
		m.RecordProviderLatency("tavily", "success", 0.2)
		m.SetCircuitBreakerState("tavily", "closed")
	})
	assert.Nil(t, m.Registry())
}
