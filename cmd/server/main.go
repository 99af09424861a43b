package main

import (
	"context"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/honeycarbs/talentsync/internal/config"
	"github.com/honeycarbs/talentsync/internal/mcp"
	"github.com/honeycarbs/talentsync/pkg/logging"
	"github.com/honeycarbs/talentsync/pkg/shutdown"
)

const (
	sweepInterval   = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewWithOptions(cfg.LogLevel, logging.Options{File: cfg.LogFile})
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, cleanup, err := mcp.InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	srv, err := mcp.NewServer(logger, cfg, res)
	if err != nil {
		logger.Error("failed to build MCP server", "err", err)
		cleanup()
		os.Exit(1)
	}

	go res.Sweeper.Run(ctx, sweepInterval)

	// stop order: listener, sweeper, background tasks; the store closes after via cleanup
	stoppable := shutdown.Sequence(
		srv,
		shutdown.StopFunc(func(context.Context) error {
			cancel()
			return nil
		}),
		res,
	)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		shutdown.Graceful(
			[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
			stoppable,
			shutdownTimeout,
			logger,
		)
	}()

	logger.Info("MCP server initialized and starting", "addr", net.JoinHostPort(cfg.Host, cfg.Port))

	if err := srv.Run(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		_ = stoppable.Shutdown(stopCtx)
		return
	}

	<-stopped
	logger.Info("MCP server stopped")
}
