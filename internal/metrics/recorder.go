// Package metrics defines the observability hooks for site builds and the
// HTTP servers. The Recorder interface decouples callers from the concrete
// backend; the Prometheus implementation is wired in serve mode and the
// noop implementation everywhere else.
package metrics

import "time"

// BuildOutcome enumerates terminal build states for counters.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Recorder receives build and request observations. Implementations must
// tolerate nil receivers so injection stays optional.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	AddPagesBuilt(n int)
	AddPagesSkipped(n int)
	IncHTTPRequest(status int)
}

// NoopRecorder is the default Recorder when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)       {}
func (NoopRecorder) AddPagesBuilt(int)                  {}
func (NoopRecorder) AddPagesSkipped(int)                {}
func (NoopRecorder) IncHTTPRequest(int)                 {}
