package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jeevanjot011/bevflow/internal/config"
	order_service_http "github.com/jeevanjot011/bevflow/internal/delivery/http"
)

type App struct {
	log             *slog.Logger
	httpServer      *http.Server
	port            int
	shutdownTimeout time.Duration
}

func NewApp(log *slog.Logger, handler *order_service_http.Handler, cfg config.HTTPConfig) *App {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.InitRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		log:             log,
		httpServer:      httpServer,
		port:            cfg.Port,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

func (a *App) RunWithPanic() {
	if err := a.Run(); err != nil {
		panic(fmt.Sprintf("failed to run http server: %v", err))
	}
}

// Run blocks until the server stops. A graceful Stop is not an error.
func (a *App) Run() error {
	const op = "httpapp.run"

	log := a.log.With(slog.String("op", op), slog.Int("port", a.port))

	log.Info("starting http server")

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop() error {
	const op = "httpapp.stop"

	log := a.log.With(slog.String("op", op))

	log.Info("stopping http server")

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	return a.httpServer.Shutdown(ctx)
}
