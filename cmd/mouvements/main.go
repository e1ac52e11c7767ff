package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mouvements/internal/amqp"
	"mouvements/internal/cli"
	apphttp "mouvements/internal/http"
	"mouvements/internal/log"
	"mouvements/internal/notify"
	"mouvements/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; without it the register worker simply never
	// hears about changes until its poller catches up.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync",
				log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	// Email notifications are optional too; without an SMTP host every
	// movement is still recorded, just silently.
	var (
		notifier services.Notifier
		testMail apphttp.TestMailSender
	)
	if cfg.NotificationsEnabled() {
		mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		})
		if err != nil {
			logger.Error("Failed to initialize SMTP mailer", log.FieldError, err)
			os.Exit(1)
		}
		dispatcher := notify.NewDispatcher(repo, mailer, cfg.MailRecipient, cfg.BaseURL)
		notifier = dispatcher
		testMail = dispatcher
		logger.Info("Email notifications enabled",
			"smtp_host", cfg.SMTPHost,
			"recipient", cfg.MailRecipient)
	} else {
		logger.Info("Email notifications disabled - no SMTP_HOST provided")
	}

	server, err := apphttp.NewServer(apphttp.Config{
		Port:      cfg.Port,
		BaseURL:   cfg.BaseURL,
		Movements: services.NewMovementService(repo, notifier, publisher),
		Stats:     services.NewStatsService(repo),
		Users:     repo,
		TestMail:  testMail,
		Logger:    logger.WithComponent(log.ComponentHTTP),
	})
	if err != nil {
		logger.Error("Failed to initialize HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting mouvements server", "port", cfg.Port)
	if err := server.Start(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
