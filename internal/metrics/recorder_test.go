package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome(OutcomeSuccess)
	r.AddPagesBuilt(3)
	r.AddPagesSkipped(1)
	r.IncHTTPRequest(200)
}

func TestPrometheusRecorderNilReceiver(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveBuildDuration(time.Second)
	p.IncBuildOutcome(OutcomeFailed)
	p.AddPagesBuilt(1)
	p.AddPagesSkipped(1)
	p.IncHTTPRequest(404)
}

func TestPrometheusRecorderExposition(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewPrometheusRecorder(reg)

	p.ObserveBuildDuration(250 * time.Millisecond)
	p.IncBuildOutcome(OutcomeSuccess)
	p.AddPagesBuilt(7)
	p.AddPagesSkipped(2)
	p.IncHTTPRequest(200)
	p.IncHTTPRequest(404)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	require.Contains(t, body, "docsite_pages_built_total 7")
	require.Contains(t, body, "docsite_pages_skipped_total 2")
	require.Contains(t, body, `docsite_build_outcomes_total{outcome="success"} 1`)
	require.Contains(t, body, `docsite_http_requests_total{status="404"} 1`)
}
