package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/state"
	"git.home.luguber.info/inful/docsite/internal/watch"
)

// syncContent updates the content checkout when the config points at a git
// repository; with a plain local dir it is a no-op.
func syncContent(ctx context.Context, cfg *config.Config) error {
	if cfg.Content.Repo == "" {
		return nil
	}
	src := source.NewGitSource(cfg.Content.Repo, cfg.Content.Branch, cfg.Content.Dir)
	commit, err := src.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync content repository: %w", err)
	}
	slog.Info("Content synced", "commit", commit[:8])
	return nil
}

func openStore(cfg *config.Config) (*state.Store, error) {
	path := cfg.Watch.StateDB
	if path == "" {
		path = ":memory:"
	}
	return state.Open(path)
}

func runBuild(cfg *config.Config, incremental bool) error {
	ctx := context.Background()
	if err := syncContent(ctx, cfg); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	builder, err := site.NewBuilder(cfg, content.NewLoader(cfg.Content.Dir), site.Options{Store: store})
	if err != nil {
		return err
	}

	result, err := builder.Build(ctx, incremental)
	if err != nil {
		return err
	}
	if len(result.Warnings) > 0 {
		slog.Warn("Build completed with warnings", logfields.Pages(result.Built), slog.Int("warnings", len(result.Warnings)))
	}
	return nil
}

func runCheck(cfg *config.Config) error {
	ctx := context.Background()
	if err := syncContent(ctx, cfg); err != nil {
		return err
	}

	builder, err := site.NewBuilder(cfg, content.NewLoader(cfg.Content.Dir), site.Options{})
	if err != nil {
		return err
	}
	problems, err := builder.Check(ctx)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		for _, p := range problems {
			slog.Error("Check problem", "problem", p)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	}
	slog.Info("Check passed", logfields.Pages(len(cfg.Pages())))
	return nil
}

func runServe(cfg *config.Config, watchContent bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := syncContent(ctx, cfg); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	builder, err := site.NewBuilder(cfg, content.NewLoader(cfg.Content.Dir), site.Options{
		Store:    store,
		Recorder: recorder,
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg, store, registry, recorder)

	initial, err := builder.Build(ctx, false)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	srv.SetLastBuild(initial)
	slog.Info("Serving site",
		slog.String("docs_addr", cfg.Server.DocsAddr),
		slog.String("entry", server.FirstPageHref(cfg.Pages())))

	bus := watch.NewBus()
	defer bus.Close()

	errCh := make(chan error, 4)

	runner := watch.NewRunner(bus, builder.Build, srv.SetLastBuild)
	go func() { errCh <- runner.Run(ctx) }()

	if watchContent {
		watcher := watch.NewWatcher(bus, cfg.Content.Dir, cfg.Watch.Debounce)
		go func() { errCh <- watcher.Run(ctx) }()
	}

	if cfg.Watch.RebuildInterval > 0 {
		sched, schedErr := watch.NewScheduler(bus)
		if schedErr != nil {
			return schedErr
		}
		if _, schedErr = sched.SchedulePeriodicRebuild(ctx, cfg.Watch.RebuildInterval); schedErr != nil {
			return schedErr
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	if cfg.Watch.NATSURL != "" {
		publisher, natsErr := watch.NewNATSPublisher(cfg.Watch.NATSURL, cfg.Watch.NATSSubject)
		if natsErr != nil {
			return natsErr
		}
		defer publisher.Close()
		go func() { errCh <- publisher.Run(ctx, bus) }()
	}

	go func() { errCh <- srv.Start(ctx) }()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
		return nil
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
}
