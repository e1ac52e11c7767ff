package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"mouvements/internal/amqp"
	"mouvements/internal/backend"
	"mouvements/internal/cli"
	"mouvements/internal/log"
	"mouvements/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting mouvements-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Select the register backend (in-memory for development, Google
	// Sheets in production).
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid register backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateRegister(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize register backend", log.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	registerWorker := worker.NewRegisterWorker(repo, result.Register, cfg.SyncBatchSize)

	// Catch up on rows that were written while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := registerWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", log.FieldError, err)
		// Keep running; the poller retries pending rows.
	}

	// AMQP consumption is optional: without it the poller alone keeps
	// the register eventually consistent.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, relying on the poller only",
				log.FieldError, err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	group, ctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		group.Go(func() error {
			err := amqpClient.ConsumeMovementSync(ctx, func(msg *amqp.MovementSyncMessage) error {
				return registerWorker.HandleSyncMessage(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
				return err
			}
			return nil
		})
	} else {
		logger.Info("Skipping AMQP message consumption - no client available")
	}

	group.Go(func() error {
		return registerWorker.RunPoller(ctx, cfg.SyncInterval)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
