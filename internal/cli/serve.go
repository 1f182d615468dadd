package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sceneplan/sceneplan/internal/api"
	"github.com/sceneplan/sceneplan/pkg/cache"
	"github.com/sceneplan/sceneplan/pkg/config"
	"github.com/sceneplan/sceneplan/pkg/pipeline"
	"github.com/sceneplan/sceneplan/pkg/store"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout planning HTTP API",
		Long: `Run the layout planning HTTP API.

Configuration is read from a TOML file (default sceneplan.toml in the
working directory). With a [cache] redis_url the artifact cache is
shared across instances; with a [server] mongo_uri plans persist in
MongoDB instead of process memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "sceneplan.toml", "config file path")

	return cmd
}

// runServe builds the cache, store, and router, then serves until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	pipelineCache, err := c.serveCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(pipelineCache, nil, c.Logger)
	defer runner.Close()

	planStore, err := c.serveStore(ctx, cfg.Server)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer planStore.Close(context.Background())

	// Canvas and layout sections become the per-request defaults.
	defaults := pipeline.Options{
		CanvasWidth:  cfg.Canvas.Width,
		CanvasHeight: cfg.Canvas.Height,
		Margin:       cfg.Layout.Margin,
		Strategy:     cfg.Layout.Strategy,
		GridRows:     cfg.Layout.GridRows,
		GridCols:     cfg.Layout.GridCols,
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(runner, planStore, c.Logger, defaults).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// serveCache selects the cache backend from config: Redis when
// configured, else the local file cache, else nothing.
func (c *CLI) serveCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		c.Logger.Info("using redis cache")
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// serveStore selects the plan store from config.
func (c *CLI) serveStore(ctx context.Context, cfg config.ServerConfig) (store.Store, error) {
	if cfg.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	c.Logger.Info("using mongodb store", "db", cfg.MongoDB)
	return store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
}
