// Package watcher rebuilds the index when the document directory changes.
package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 2 * time.Second

// Watcher debounces corpus changes into index rebuilds. A rebuild publishes
// its snapshot through the index service, so queries see it immediately.
type Watcher struct {
	source   driven.DocumentSource
	index    driving.IndexService
	debounce time.Duration

	// OnBuild is called after every rebuild attempt. Optional.
	OnBuild func(report *domain.BuildReport, err error)

	mu      sync.Mutex
	running bool
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(source driven.DocumentSource, index driving.IndexService, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		source:   source,
		index:    index,
		debounce: debounce,
	}
}

// Run watches until ctx is cancelled. It blocks.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	changes, err := w.source.Watch(ctx)
	if err != nil {
		return err
	}
	defer w.source.Close()
	logger.Info("Watching %s for changes", w.source.Root())

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := 0

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("%s %s", change.Type, change.Path)
			pending++
			timer.Reset(w.debounce)
		case <-timer.C:
			logger.Info("Rebuilding index after %d change(s)", pending)
			pending = 0
			if w.rebuild(ctx) {
				timer.Reset(w.debounce)
			}
		}
	}
}

// rebuild runs one build and reports whether it should be retried.
func (w *Watcher) rebuild(ctx context.Context) bool {
	report, err := w.index.BuildIndex(ctx, false)
	if w.OnBuild != nil {
		w.OnBuild(report, err)
	}

	switch {
	case err == nil:
		if report.Skipped {
			logger.Info("Index already current")
		} else {
			logger.Info("Index rebuilt: %d chunks from %d documents", report.Chunks, report.Documents)
		}
	case errors.Is(err, domain.ErrBuildInProgress):
		logger.Debug("Build in progress, retrying after %s", w.debounce)
		return true
	case errors.Is(err, domain.ErrEmptyCorpus):
		logger.Warn("No indexable documents; keeping the previous index")
	case ctx.Err() != nil:
		// shutting down
	default:
		logger.Error("Rebuild failed: %v", err)
	}
	return false
}
