// FILE: cmd/chesscoachd/main.go
// Package main implements the match API daemon: RESTful match
// orchestration backed by a pool of UCI engine processes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chesscoach/cmd/chesscoachd/cli"
	"chesscoach/internal/engine"
	"chesscoach/internal/match"
	"chesscoach/internal/storage"
	httptransport "chesscoach/internal/transport/http"

	"go.uber.org/zap"
)

const gracefulShutdownTimeout = time.Second * 5

func main() {
	// Offline database commands run without the daemon
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, verbose logs)")
		enginePath  = flag.String("engine", "stockfish", "Path to a UCI engine binary")
		noEngine    = flag.Bool("no-engine", false, "Run without an engine (moves are not rated, no opponent)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -pid-lock flag requires the -pid flag to be set")
		os.Exit(1)
	}

	log, err := newLogger(*dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatal("PID file management failed", zap.Error(err))
		}
		defer cleanup()
		log.Info("PID file created", zap.String("path", *pidPath), zap.Bool("lock", *pidLock))
	}

	// Storage (optional)
	var store *storage.Store
	if *storagePath != "" {
		store, err = storage.NewStore(*storagePath, *dev, log)
		if err != nil {
			log.Fatal("storage init failed", zap.Error(err))
		}
		if err := store.InitDB(); err != nil {
			log.Fatal("schema init failed", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("storage close failed", zap.Error(err))
			}
		}()
		log.Info("persistent storage enabled", zap.String("path", *storagePath))
	} else {
		log.Info("persistent storage disabled (use -storage-path to enable)")
	}

	// Each match owns its own engine process, opened through this factory.
	var newGw match.GatewayFactory
	if !*noEngine {
		path := *enginePath
		newGw = func() (engine.Gateway, error) {
			return engine.New(path, log)
		}

		// Probe once at startup so a missing binary fails fast.
		probe, err := engine.New(path, log)
		if err != nil {
			log.Fatal("engine unavailable (use -no-engine to run without one)",
				zap.String("engine", path), zap.Error(err))
		}
		probe.Close()
	} else {
		log.Warn("running without an engine: moves are not rated and no opponent replies")
	}

	svc := match.NewService(newGw, store, log)
	app := httptransport.NewFiberApp(svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Info("match API server starting",
			zap.String("addr", apiAddr),
			zap.Bool("dev", *dev),
			zap.Bool("engine", !*noEngine))
		if err := app.Listen(apiAddr); err != nil {
			log.Error("API server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}

	svc.Close()

	log.Info("server exited")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
