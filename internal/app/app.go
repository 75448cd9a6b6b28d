package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidgrab/backend/internal/config"
	"github.com/vidgrab/backend/internal/handlers"
	"github.com/vidgrab/backend/internal/httpserver"
	"github.com/vidgrab/backend/internal/middleware"
	"github.com/vidgrab/backend/internal/serverless"
)

const reporterFlushTimeout = 2 * time.Second

// Run bootstraps the vidgrab analyzer.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or lambda")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "lambda":
		return runLambda()
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func setup() (config.Config, *slog.Logger, Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, Dependencies{}, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true, Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	deps, err := buildDependencies(cfg)
	if err != nil {
		return config.Config{}, nil, Dependencies{}, err
	}

	return cfg, logger, deps, nil
}

func newHandler(logger *slog.Logger, deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.HTTP)
	return middleware.RequestLogger(logger, deps.HTTP.ProviderName)(mux)
}

func serve(ctx context.Context) error {
	cfg, logger, deps, err := setup()
	if err != nil {
		return err
	}
	defer deps.Reporter.Flush(reporterFlushTimeout)

	srv := httpserver.New(cfg.AppPort, newHandler(logger, deps), cfg.ShutdownTimeout)

	logger.Info("starting http server", "port", cfg.AppPort, "provider", deps.HTTP.ProviderName)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	return srv.Shutdown(context.Background())
}

func runLambda() error {
	_, logger, deps, err := setup()
	if err != nil {
		return err
	}
	defer deps.Reporter.Flush(reporterFlushTimeout)

	logger.Info("starting lambda runtime", "provider", deps.HTTP.ProviderName)
	serverless.NewAdapter(newHandler(logger, deps)).Start()
	return nil
}
