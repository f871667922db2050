// Package filesystem reads corpus documents from a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.DocumentSource = (*Connector)(nil)

// Connector lists the top-level files of a directory. Hidden files and
// subdirectories are ignored.
type Connector struct {
	rootPath  string
	supported func(path string) bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a connector for rootPath. supported filters files by path;
// nil accepts every file.
func New(rootPath string, supported func(path string) bool) *Connector {
	if supported == nil {
		supported = func(string) bool { return true }
	}
	return &Connector{rootPath: rootPath, supported: supported}
}

// Root returns the corpus directory.
func (c *Connector) Root() string {
	return c.rootPath
}

// List returns the supported documents sorted by file name.
// A missing directory is an empty corpus.
func (c *Connector) List(ctx context.Context) ([]domain.SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.rootPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("documents directory %s does not exist", c.rootPath)
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", c.rootPath, err)
	}

	docs := make([]domain.SourceDocument, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !c.accepts(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			logger.Warn("skipping %s: %v", entry.Name(), err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		docs = append(docs, domain.SourceDocument{
			Name:    entry.Name(),
			Path:    filepath.Join(c.rootPath, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Watch streams changes to supported files. The channel closes when ctx is
// cancelled or Close is called.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.CorpusChange, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.rootPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	c.mu.Lock()
	if c.watcher != nil {
		c.watcher.Close()
	}
	c.watcher = watcher
	c.mu.Unlock()

	changes := make(chan domain.CorpusChange)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := c.toChange(event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error: %v", err)
			}
		}
	}()

	return changes, nil
}

// Close stops an active watch.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

func (c *Connector) accepts(name string) bool {
	return !strings.HasPrefix(name, ".") && c.supported(name)
}

// toChange maps an fsnotify event; chmod-only events are dropped.
func (c *Connector) toChange(event fsnotify.Event) (domain.CorpusChange, bool) {
	if !c.accepts(filepath.Base(event.Name)) {
		return domain.CorpusChange{}, false
	}

	var kind domain.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		kind = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		kind = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		kind = domain.ChangeDeleted
	default:
		return domain.CorpusChange{}, false
	}
	return domain.CorpusChange{Type: kind, Path: event.Name}, true
}
