package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"diabetesdx/app"
	"diabetesdx/config"
	dhttp "diabetesdx/http"
	"diabetesdx/logging"
	"diabetesdx/ml"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2. Load model and dataset; nothing is served without both
	application, err := app.Bootstrap(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Model.Watch {
		watchModel(ctx, cfg.Model.Path, logger)
	}

	// 3. Start HTTP server
	server, err := dhttp.NewServer(cfg.HTTP, application, logger)
	if err != nil {
		logger.Fatal("build HTTP server", zap.Error(err))
	}
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

// watchModel warns when the artifact changes under a running process. The
// loaded classifier is kept; a restart picks up the new file.
func watchModel(ctx context.Context, path string, logger *zap.Logger) {
	err := ml.WatchArtifact(ctx, path,
		func(op fsnotify.Op) {
			logger.Warn("model artifact changed on disk, restart to load it",
				zap.String("path", path), zap.Stringer("op", op))
		},
		func(err error) {
			logger.Error("model watcher", zap.Error(err))
		})
	if err != nil {
		logger.Warn("model watcher disabled", zap.Error(err))
	}
}
