package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Watcher publishes a debounced BuildRequested whenever the content tree
// changes. Editors produce bursts of writes; the debounce window collapses
// a burst into one rebuild.
type Watcher struct {
	bus      *Bus
	dir      string
	debounce time.Duration
}

// NewWatcher watches dir (recursively) and publishes on bus.
func NewWatcher(bus *Bus, dir string, debounce time.Duration) *Watcher {
	return &Watcher{bus: bus, dir: dir, debounce: debounce}
}

// Run blocks until ctx is canceled, forwarding debounced change events.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	if err := addRecursive(fsw, w.dir); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		lastEvt string
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case evt, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if shouldIgnore(evt.Name) {
				continue
			}
			// New directories must be added to the watch set or edits
			// below them go unseen.
			if evt.Op.Has(fsnotify.Create) {
				if st, statErr := os.Stat(evt.Name); statErr == nil && st.IsDir() {
					if err := addRecursive(fsw, evt.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(evt.Name), logfields.Error(err))
					}
				}
			}
			lastEvt = evt.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			if err := Publish(w.bus, ctx, BuildRequested{
				Reason:      "content changed",
				Path:        lastEvt,
				RequestedAt: time.Now(),
			}); err != nil {
				return err
			}

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(watchErr))
		}
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// shouldIgnore filters editor noise: hidden files, emacs/vim temp files
// and macOS metadata.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, "~"):
		return true
	}
	return false
}
