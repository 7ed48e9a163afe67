// ABOUTME: CLI command running the HTTP API server.
// ABOUTME: Wires storage, ingestion, stats cache and auth, with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/velolab/velo/internal/auth"
	"github.com/velolab/velo/internal/cache"
	"github.com/velolab/velo/internal/ingest"
	"github.com/velolab/velo/internal/server"
	"github.com/velolab/velo/internal/stats"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the performance-tracking HTTP API.

The server requires a token secret for signing bearer tokens:

  $ VELO_TOKEN_SECRET=change-me velo serve

If redis_addr is configured, stats queries are cached in Redis. Without it
the server runs uncached.

EXAMPLES:

  velo serve                     # Listen on the configured address (:8080)
  velo serve --addr :9000        # Override the listen address`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		addr := cfg.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		var statsCache stats.Cache
		if cfg.RedisAddr != "" {
			redis, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL)
			if err != nil {
				log.Printf("redis unavailable, stats cache disabled: %v", err)
			} else {
				defer redis.Close()
				statsCache = redis
			}
		}

		api := server.New(
			db,
			ingest.NewPipeline(db),
			stats.New(db, statsCache),
			auth.NewTokens(cfg.TokenSecret, cfg.TokenTTL),
			cfg.BcryptCost,
		)

		mux := http.NewServeMux()
		mux.Handle("/", api.Handler())
		mux.Handle("GET /metrics", promhttp.Handler())

		httpServer := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Printf("listening on %s", addr)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: config listen_addr)")
	rootCmd.AddCommand(serveCmd)
}
