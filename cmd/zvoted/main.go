// Command zvoted is the zvote backend process: it owns the SQLite store
// and the Orchard keys, and exposes the service surface of spec.md §6
// over a local HTTP API for a UI shell to drive, the same sidecar-process
// role davinci-sequencer's main.go plays for its own API service.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vocdoni/zvote/config"
	"github.com/vocdoni/zvote/db"
	"github.com/vocdoni/zvote/log"
	"github.com/vocdoni/zvote/service"
)

// Version is set at build time via -ldflags; left as a placeholder
// otherwise, same convention davinci-sequencer's own Version var follows.
var Version = "dev"

const shutdownGrace = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output)
	log.Infow("starting zvoted", "version", Version)

	if err := os.MkdirAll(filepath.Dir(cfg.DB), 0o700); err != nil {
		log.Fatalw("failed to create datadir", "error", err)
	}

	store, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatalw("failed to open database", "error", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorw(err, "failed to close database cleanly")
		}
	}()

	svc := service.New(store, cfg.LwdURL, cfg.TallierURL, rand.Reader)

	api := service.NewHTTPAPI(svc)
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Router()}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Infow("zvote http api listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErrCh <- err
			return
		}
		serveErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infow("received signal, shutting down", "signal", sig.String())
	case err := <-serveErrCh:
		if err != nil {
			log.Errorw(err, "http api exited unexpectedly")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Errorw(err, "http api did not shut down cleanly")
	}
}
