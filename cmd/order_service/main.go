package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jeevanjot011/bevflow/internal/app"
	"github.com/jeevanjot011/bevflow/internal/config"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

func main() {
	cfg := config.InitConfig()

	log := logger.SetupLogger(cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	application, err := app.NewApp(ctx, log, &cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create app: %v", err))
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(application.HTTPServer.Run)

	g.Go(func() error {
		<-gCtx.Done()
		return application.HTTPServer.Stop()
	})

	if !cfg.Provisioner.SkipOnStartup {
		g.Go(func() error {
			// Advisory: the API keeps serving with whatever converged.
			if _, err := application.Provisioner.EnsureAll(gCtx); err != nil {
				log.Warn("startup provisioning incomplete", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		log.Error("application exited", slog.String("error", err.Error()))
	}

	if err = application.Stop(); err != nil {
		panic(fmt.Sprintf("failed to stop app: %v", err))
	}

	log.Info("application stopped")
}
