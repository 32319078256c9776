package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLLM("negotiate", nil, time.Second)
	m.ObserveLLM("negotiate", errors.New("boom"), time.Second)
	m.AgentDecision("RECOMMEND", "approve")
	m.InquiryTransition("closed")
	m.IdleClosedAdd(3)
	m.IdleClosedAdd(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequestCounter.WithLabelValues("negotiate", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgentDecisions.WithLabelValues("RECOMMEND", "approve")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IdleClosed))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveLLM("rank", nil, time.Millisecond)
		m.SocialSync("instagram", nil)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTP("GET", "/healthz", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "collab_http_requests_total"))
}
