package watch

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// BuildFunc runs one site build. The runner always requests incremental
// builds; the builder decides per page what actually needs rendering.
type BuildFunc func(ctx context.Context, incremental bool) (*site.Result, error)

// Runner consumes BuildRequested events one at a time, runs the build, and
// publishes a BuildCompleted per finished build. Requests arriving while a
// build is in flight queue up in the subscription buffer; running builds
// strictly sequentially keeps the output tree consistent.
type Runner struct {
	bus      *Bus
	build    BuildFunc
	onResult func(*site.Result)
}

// NewRunner creates a runner. onResult may be nil; when set it receives
// every successful build result (the serve command points it at the HTTP
// server's status).
func NewRunner(bus *Bus, build BuildFunc, onResult func(*site.Result)) *Runner {
	return &Runner{bus: bus, build: build, onResult: onResult}
}

// Run blocks until ctx is canceled or the bus closes.
func (r *Runner) Run(ctx context.Context) error {
	requests, cancel := Subscribe[BuildRequested](r.bus, 16)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-requests:
			if !ok {
				return nil
			}
			r.handle(ctx, req)
		}
	}
}

func (r *Runner) handle(ctx context.Context, req BuildRequested) {
	slog.Info("Build requested", slog.String("reason", req.Reason), logfields.Path(req.Path))

	result, err := r.build(ctx, true)
	if err != nil {
		slog.Error("Build failed", logfields.Error(err))
		return
	}
	if r.onResult != nil {
		r.onResult(result)
	}

	completed := BuildCompleted{
		BuildID:     result.BuildID,
		Outcome:     string(result.Outcome()),
		Pages:       result.Built,
		Skipped:     result.Skipped,
		Warnings:    len(result.Warnings),
		DurationMS:  result.Duration.Milliseconds(),
		CompletedAt: time.Now(),
	}
	if err := Publish(r.bus, ctx, completed); err != nil {
		slog.Warn("Failed to publish build completion", logfields.Error(err))
	}
}
