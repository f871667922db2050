package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/clearpath-labs/clearpath/internal/adapters/driving/httpapi"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/watcher"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

var (
	serveAddr     string
	serveWatch    bool
	serveDebounce time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API with /query, /retrieve, /route, /index and /health.

The index is built first if none exists, and loaded before the server
accepts requests. Use --watch to rebuild it when documents change.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "rebuild the index when documents change")
	serveCmd.Flags().DurationVar(&serveDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a rebuild")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}
	ctx := cmd.Context()

	if err := prepareIndex(ctx); err != nil {
		return err
	}

	cfg := httpapi.Config{Addr: serveAddr}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			if cfg.Addr == "" {
				cfg.Addr = settings.Server.Addr
			}
			cfg.RequestsPerSecond = settings.Server.RequestsPerSecond
		}
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Retrieval: retrievalService,
		Router:    routerService,
		Query:     queryService,
		Index:     indexService,
	}, cfg)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if serveWatch {
		if documentSource == nil || indexService == nil {
			return errNotConfigured("watch")
		}
		w := watcher.New(documentSource, indexService, serveDebounce)
		g.Go(func() error { return w.Run(ctx) })
	}
	g.Go(func() error { return server.Run(ctx) })

	cmd.Printf("ClearPath API listening on %s\n", server.Addr())
	return g.Wait()
}

// prepareIndex builds the index when none exists and loads it for queries.
func prepareIndex(ctx context.Context) error {
	if indexService != nil {
		status, err := indexService.Status(ctx)
		if err != nil {
			return fmt.Errorf("reading index status: %w", err)
		}
		switch {
		case !status.Exists:
			logger.Info("No index found, building one")
			report, err := indexService.BuildIndex(ctx, false)
			if err != nil {
				return fmt.Errorf("building index: %w", err)
			}
			logger.Info("Indexed %d chunks from %d documents", report.Chunks, report.Documents)
		case status.Stale:
			logger.Warn("Documents changed since the index was built; run 'clearpath index' to refresh")
		}
	}

	err := retrievalService.EnsureLoaded(ctx)
	if err != nil && indexService != nil && errors.Is(err, domain.ErrMalformedPersistedState) {
		logger.Warn("Stored index is unreadable, rebuilding: %v", err)
		if _, buildErr := indexService.BuildIndex(ctx, true); buildErr != nil {
			return fmt.Errorf("rebuilding index: %w", buildErr)
		}
		err = retrievalService.EnsureLoaded(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	return nil
}
