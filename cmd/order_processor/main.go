package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"

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
	defer func() { _ = application.Stop() }()

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.StartWithOptions(application.LambdaHandler().Handle, lambda.WithContext(ctx))
		return
	}

	worker, err := application.KafkaWorker(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to start kafka worker: %v", err))
	}

	log.Info("kafka worker started")

	if err = worker.Run(ctx); err != nil {
		panic(fmt.Sprintf("kafka worker failed: %v", err))
	}

	log.Info("kafka worker stopped")
}
