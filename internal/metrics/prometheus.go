package metrics

import (
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	pagesBuilt    prom.Counter
	pagesSkipped  prom.Counter
	httpRequests  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the docsite metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docsite",
			Name:      "build_duration_seconds",
			Help:      "Total site build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pagesBuilt: prom.NewCounter(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "pages_built_total",
			Help:      "Pages rendered and written across builds",
		}),
		pagesSkipped: prom.NewCounter(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "pages_skipped_total",
			Help:      "Pages skipped as unchanged during incremental builds",
		}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "http_requests_total",
			Help:      "HTTP requests served by status code",
		}, []string{"status"}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.pagesBuilt, pr.pagesSkipped, pr.httpRequests)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddPagesBuilt(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.pagesBuilt.Add(float64(n))
}

func (p *PrometheusRecorder) AddPagesSkipped(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.pagesSkipped.Add(float64(n))
}

func (p *PrometheusRecorder) IncHTTPRequest(status int) {
	if p == nil {
		return
	}
	p.httpRequests.WithLabelValues(fmt.Sprintf("%d", status)).Inc()
}

// HTTPHandler serves the registry in Prometheus exposition format.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
