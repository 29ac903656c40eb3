// The bridge executable speaks the line-delimited JSON issue protocol on
// stdin/stdout and keeps all diagnostics on stderr. It exits 0 when the
// input stream closes or a termination signal arrives.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/issuebridge/bridge-core/core/config"
	"github.com/issuebridge/bridge-core/core/dispatch"
	"github.com/issuebridge/bridge-core/core/logging"
	"github.com/issuebridge/bridge-core/core/platform"
	"github.com/issuebridge/bridge-core/core/transport"
)

func main() {
	cfg := config.Load()
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.DevMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := platform.NewRegistry(cfg)
	server := transport.NewServer(dispatch.New(registry), os.Stdin, os.Stdout)

	slog.Info("issue bridge ready", "defaultPlatform", cfg.DefaultPlatform)

	if err := server.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal("bridge terminated", "error", err)
	}
	slog.Info("issue bridge shutting down")
}
