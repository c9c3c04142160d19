// Package watch orchestrates rebuilds in serve mode: filesystem changes
// and periodic schedules are funneled through an in-process event bus into
// a single build runner, so concurrent triggers collapse into one build at
// a time.
package watch

import "time"

// BuildRequested asks the runner to rebuild the site soon. Triggers are
// debounced before this event is published.
type BuildRequested struct {
	Reason      string
	Path        string // file that changed, when the trigger was a watch event
	RequestedAt time.Time
}

// BuildCompleted is published after every finished build. The NATS
// publisher forwards it when configured.
type BuildCompleted struct {
	BuildID     string    `json:"build_id"`
	Outcome     string    `json:"outcome"`
	Pages       int       `json:"pages"`
	Skipped     int       `json:"skipped"`
	Warnings    int       `json:"warnings"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}
