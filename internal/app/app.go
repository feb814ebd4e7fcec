// Package app wires the server together: logger, room directory, room
// manager and the HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hexwake/server/internal/directory"
	"hexwake/server/internal/game"
	"hexwake/server/internal/logging"
	servernet "hexwake/server/internal/net"
	"hexwake/server/internal/net/ws"
)

type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string
	// ClientDir is the static client served at the root path.
	ClientDir string
	// LogFile enables the rotating file sink when non-empty.
	LogFile string
	// Debug lowers the console log level to debug.
	Debug bool
	// MapRadius, LandChance and Seed configure map generation for every
	// room this process hosts.
	MapRadius  int
	LandChance float64
	Seed       int64
	// DirectoryTTL is how long an unrefreshed room listing survives.
	DirectoryTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ClientDir:    "./client",
		MapRadius:    game.DefaultMapRadius,
		LandChance:   game.DefaultLandChance,
		DirectoryTTL: time.Minute,
	}
}

// Run starts the server and blocks until ctx is canceled or the
// listener fails. Cancellation drains in-flight requests before
// returning.
func Run(ctx context.Context, cfg Config) error {
	log := logging.New(logging.Config{FilePath: cfg.LogFile, Debug: cfg.Debug})
	defer log.Sync()

	dir := directory.New(cfg.DirectoryTTL, log)
	go dir.Run(ctx)

	manager := game.NewManager(game.Config{
		MapRadius:  cfg.MapRadius,
		LandChance: cfg.LandChance,
		Seed:       cfg.Seed,
	}, dir, log)

	handler := servernet.NewRouter(manager, dir, ws.NewHandler(manager, log), servernet.RouterConfig{
		ClientDir: cfg.ClientDir,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Infow("server listening", "addr", cfg.Addr, "clientDir", cfg.ClientDir)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
