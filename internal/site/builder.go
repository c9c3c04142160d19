// Package site renders the flattened page list into a static HTML tree:
// one index.html per navigable page, carrying the left nav, breadcrumb
// trail, article body, heading outline and prev/next pagination.
package site

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/state"
)

//go:embed templates/*.html
var templateFS embed.FS

// Builder renders the configured site. It is safe to call Build repeatedly
// (the watch loop does); the route tree itself is immutable configuration.
type Builder struct {
	cfg      *config.Config
	loader   *content.Loader
	store    *state.Store
	recorder metrics.Recorder
	layout   *template.Template
	notFound *template.Template
}

// Options carries optional Builder collaborators.
type Options struct {
	Store    *state.Store     // enables incremental skip + build records
	Recorder metrics.Recorder // defaults to NoopRecorder
}

// NewBuilder parses the embedded templates and wires the builder.
func NewBuilder(cfg *config.Config, loader *content.Loader, opts Options) (*Builder, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout template: %w", err)
	}
	notFound, err := template.ParseFS(templateFS, "templates/notfound.html")
	if err != nil {
		return nil, fmt.Errorf("parse notfound template: %w", err)
	}

	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Builder{
		cfg:      cfg,
		loader:   loader,
		store:    opts.Store,
		recorder: rec,
		layout:   layout,
		notFound: notFound,
	}, nil
}

// Result summarizes one build.
type Result struct {
	BuildID  string
	Started  time.Time
	Duration time.Duration
	Built    int
	Skipped  int
	Warnings []string
}

// Outcome maps the result onto a metrics label: any warning demotes a
// completed build from success to warning.
func (r *Result) Outcome() metrics.BuildOutcome {
	if len(r.Warnings) > 0 {
		return metrics.OutcomeWarning
	}
	return metrics.OutcomeSuccess
}

// pageData is what the layout template renders.
type pageData struct {
	Site        config.SiteConfig
	Title       string
	Description string
	Body        template.HTML
	Nav         []NavItem
	Breadcrumbs []routes.Crumb
	Headings    []markdown.Heading
	Prev        *routes.Page
	Next        *routes.Page
}

// Build renders every flattened page into the output directory. With
// incremental set and a state store wired, pages whose content fingerprint
// is unchanged are skipped; a route-tree or site-metadata change defeats
// the skip and forces a full rebuild. Missing documents and dangling
// internal links are warnings, not failures: the build completes and
// reports them.
func (b *Builder) Build(ctx context.Context, incremental bool) (*Result, error) {
	started := time.Now()
	result := &Result{BuildID: uuid.NewString(), Started: started}

	pages := b.cfg.Pages()
	slog.Info("Starting site build",
		logfields.BuildID(result.BuildID),
		logfields.Pages(len(pages)),
		slog.Bool("incremental", incremental))

	// Load everything first: drafts and missing documents must drop out of
	// the nav, pagination and link targets before any page renders.
	docs := make(map[string]*content.Document, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			b.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
			return nil, err
		}

		doc, err := b.loader.Load(page.Slug())
		if errors.Is(err, content.ErrNotFound) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("route %s has no content document", page.Href))
			continue
		}
		if err != nil {
			b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
			return nil, fmt.Errorf("load %s: %w", page.Slug(), err)
		}
		if doc.Meta.Draft {
			slog.Debug("Skipping draft", logfields.Slug(doc.Slug))
			result.Skipped++
			continue
		}
		docs[page.Href] = doc
	}

	livePages := make([]routes.Page, 0, len(docs))
	live := make(map[string]struct{}, len(docs))
	for _, p := range pages {
		if _, ok := docs[p.Href]; ok {
			livePages = append(livePages, p)
			live[p.Href] = struct{}{}
		}
	}

	// Every page embeds nav and pagination derived from the route tree and
	// the live page set. A change there invalidates all skipped pages, not
	// just the ones whose own content changed.
	signature := b.siteSignature(livePages)
	if incremental && b.store != nil {
		stored, err := b.store.SiteSignature(ctx)
		if err != nil || stored != signature {
			slog.Info("Route tree or site metadata changed, forcing full rebuild",
				logfields.BuildID(result.BuildID))
			incremental = false
		}
	}

	if b.cfg.Output.Clean && !incremental {
		if err := os.RemoveAll(b.cfg.Output.Dir); err != nil {
			return nil, fmt.Errorf("clean output dir: %w", err)
		}
	}

	for _, page := range livePages {
		if err := ctx.Err(); err != nil {
			b.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
			return nil, err
		}
		doc := docs[page.Href]

		if incremental && b.unchanged(ctx, doc, page) {
			result.Skipped++
			continue
		}

		if err := b.renderPage(page, livePages, doc, live); err != nil {
			b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
			return nil, err
		}
		result.Built++

		result.Warnings = append(result.Warnings, danglingLinks(doc, live)...)

		if b.store != nil {
			if err := b.store.SetFingerprint(ctx, doc.Slug, doc.Fingerprint); err != nil {
				slog.Warn("Failed to record fingerprint", logfields.Slug(doc.Slug), logfields.Error(err))
			}
		}
	}

	if err := b.writeNotFoundPage(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)
	b.recorder.ObserveBuildDuration(result.Duration)
	b.recorder.AddPagesBuilt(result.Built)
	b.recorder.AddPagesSkipped(result.Skipped)
	b.recorder.IncBuildOutcome(result.Outcome())

	if b.store != nil {
		if err := b.store.SetSiteSignature(ctx, signature); err != nil {
			slog.Warn("Failed to record site signature", logfields.Error(err))
		}
		keep := make(map[string]struct{}, len(pages))
		for _, p := range pages {
			keep[p.Slug()] = struct{}{}
		}
		if err := b.store.PruneFingerprints(ctx, keep); err != nil {
			slog.Warn("Failed to prune fingerprints", logfields.Error(err))
		}
		rec := state.BuildRecord{
			ID:           result.BuildID,
			StartedAt:    started,
			Duration:     result.Duration,
			PagesBuilt:   result.Built,
			PagesSkipped: result.Skipped,
			Outcome:      string(result.Outcome()),
		}
		if err := b.store.RecordBuild(ctx, rec); err != nil {
			slog.Warn("Failed to record build", logfields.BuildID(result.BuildID), logfields.Error(err))
		}
	}

	for _, w := range result.Warnings {
		slog.Warn("Build warning", logfields.BuildID(result.BuildID), slog.String("warning", w))
	}
	slog.Info("Site build finished",
		logfields.BuildID(result.BuildID),
		logfields.Pages(result.Built),
		logfields.Skipped(result.Skipped),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))

	return result, nil
}

// Check verifies the site without writing output: every route must have a
// content document and every internal link must resolve to a route.
func (b *Builder) Check(ctx context.Context) ([]string, error) {
	pages := b.cfg.Pages()
	routeSet := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		routeSet[p.Href] = struct{}{}
	}

	var problems []string
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := b.loader.Load(page.Slug())
		if errors.Is(err, content.ErrNotFound) {
			problems = append(problems, fmt.Sprintf("route %s has no content document", page.Href))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", page.Slug(), err)
		}
		problems = append(problems, danglingLinks(doc, routeSet)...)
	}
	return problems, nil
}

// siteSignature fingerprints the build inputs that shape page chrome: site
// metadata, the authored route tree and the set of pages that actually
// render. Stored alongside fingerprints so incremental builds detect when
// a skipped page would carry stale nav or pagination.
func (b *Builder) siteSignature(livePages []routes.Page) string {
	h := sha256.New()
	fmt.Fprintf(h, "site|%s|%s|%s\n", b.cfg.Site.Title, b.cfg.Site.Description, b.cfg.Site.BaseURL)

	var walk func(nodes []routes.RouteNode, prefix string)
	walk = func(nodes []routes.RouteNode, prefix string) {
		for _, n := range nodes {
			full := prefix + n.Href
			fmt.Fprintf(h, "node|%s|%s|%t\n", full, n.Title, n.NoLink)
			walk(n.Items, full)
		}
	}
	walk(b.cfg.Routes, "")

	for _, p := range livePages {
		fmt.Fprintf(h, "live|%s|%s\n", p.Href, p.Title)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (b *Builder) unchanged(ctx context.Context, doc *content.Document, page routes.Page) bool {
	if b.store == nil {
		return false
	}
	stored, err := b.store.Fingerprint(ctx, doc.Slug)
	if err != nil || stored == "" || stored != doc.Fingerprint {
		return false
	}
	_, err = os.Stat(b.outputPath(page))
	return err == nil
}

func (b *Builder) renderPage(page routes.Page, livePages []routes.Page, doc *content.Document, live map[string]struct{}) error {
	title := doc.Meta.Title
	if title == "" {
		title = page.Title
	}
	prev, next := routes.Neighbors(livePages, page.Href)

	data := pageData{
		Site:        b.cfg.Site,
		Title:       title,
		Description: doc.Meta.Description,
		Body:        template.HTML(doc.HTML),
		Nav:         buildNav(b.cfg.Routes, "", page.Href, live),
		Breadcrumbs: routes.Breadcrumbs(page.Href),
		Headings:    doc.Headings,
		Prev:        prev,
		Next:        next,
	}

	path := b.outputPath(page)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir for %s: %w", page.Href, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := b.layout.Execute(f, data); err != nil {
		return fmt.Errorf("render %s: %w", page.Href, err)
	}
	return nil
}

func (b *Builder) writeNotFoundPage() error {
	path := filepath.Join(b.cfg.Output.Dir, "404.html")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create 404 page: %w", err)
	}
	defer f.Close()
	return b.notFound.Execute(f, struct{ Site config.SiteConfig }{b.cfg.Site})
}

func (b *Builder) outputPath(page routes.Page) string {
	return filepath.Join(b.cfg.Output.Dir, filepath.FromSlash(page.Slug()), "index.html")
}

// danglingLinks returns a warning per internal link that does not resolve
// to a flattened route.
func danglingLinks(doc *content.Document, routeSet map[string]struct{}) []string {
	links, err := markdown.InternalLinks(doc.HTML)
	if err != nil {
		return []string{fmt.Sprintf("%s: link extraction failed: %v", doc.Slug, err)}
	}
	var warnings []string
	for _, target := range links {
		if _, ok := routeSet[target]; !ok {
			warnings = append(warnings, fmt.Sprintf("%s links to unknown route %s", doc.Slug, target))
		}
	}
	return warnings
}
