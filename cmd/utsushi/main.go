// Command utsushi starts the overlap detection API server.
// Usage: go run ./cmd/utsushi
//
// Configuration comes from the environment (a .env file is loaded when
// present):
//
//	LISTEN_ADDR      HTTP listen address (default ":8080")
//	SEARCH_ENDPOINT  SearxNG-compatible base URL; empty disables web gathering
//	STORE_PATH       SQLite report archive path; empty disables archiving
//	SHINGLE_SIZE     matching window size in tokens (default 8)
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/raysh454/utsushi/internal/app"
	"github.com/raysh454/utsushi/internal/extractor"
	"github.com/raysh454/utsushi/internal/gatherer"
	"github.com/raysh454/utsushi/internal/logging"
	"github.com/raysh454/utsushi/internal/reportstore"
	"github.com/raysh454/utsushi/internal/searchclient"
	"github.com/raysh454/utsushi/internal/server"
	"github.com/raysh454/utsushi/internal/webclient"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	logger := logging.NewStdoutLogger("utsushi")

	cfg := app.DefaultConfig()
	cfg.SearchEndpoint = os.Getenv("SEARCH_ENDPOINT")
	cfg.StorePath = os.Getenv("STORE_PATH")
	if v := os.Getenv("SHINGLE_SIZE"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			cfg.MatcherCfg.ShingleSize = k
		} else {
			logger.Warn("ignoring invalid SHINGLE_SIZE", logging.Field{Key: "value", Value: v})
		}
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	var g *gatherer.Gatherer
	if cfg.SearchEndpoint != "" {
		wc, err := webclient.NewWebClient(cfg.WebClientCfg, logger)
		if err != nil {
			log.Fatalf("creating web client: %v", err)
		}
		defer wc.Close()

		searcher, err := searchclient.New(searchclient.Config{Endpoint: cfg.SearchEndpoint}, wc, logger)
		if err != nil {
			log.Fatalf("creating search client: %v", err)
		}

		g = gatherer.New(cfg.GathererCfg, searcher, wc, extractor.New(logger), logger)
	} else {
		logger.Info("SEARCH_ENDPOINT not set, running corpus-only")
	}

	var store *reportstore.Store
	if cfg.StorePath != "" {
		var err error
		store, err = reportstore.Open(cfg.StorePath, logger)
		if err != nil {
			log.Fatalf("opening report store: %v", err)
		}
		defer store.Close()
	} else {
		logger.Info("STORE_PATH not set, report archiving disabled")
	}

	detector := app.NewDetector(cfg, g, store, logger)

	srv, err := server.NewServer(server.Config{ListenAddr: listenAddr, Logger: logger}, detector)
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}
	httpServer := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.Field{Key: "addr", Value: listenAddr})
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", logging.Field{Key: "signal", Value: sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}
