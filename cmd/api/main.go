package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/cradoe/nationalid/internal/app"
	seeders "github.com/cradoe/nationalid/internal/seeder"
	"github.com/cradoe/nationalid/internal/version"
	"github.com/cradoe/nationalid/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	seedOnly := flag.Bool("seed", false, "seed the admin account and constituencies, then exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	cfg := app.LoadConfig(logger)

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	err = seeders.New(application.DB, &application.Config, logger).Run(context.Background())
	if err != nil {
		return err
	}
	if *seedOnly {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if application.Kafka != nil {
		notifications := worker.New(&worker.Worker{
			KafkaStream: application.Kafka,
			DB:          application.DB,
			Mailer:      application.Mailer,
			Logger:      logger,
			BaseURL:     cfg.BaseURL,
		})

		go func() {
			if err := notifications.NotificationWorker(ctx); err != nil {
				logger.Error("notification worker stopped", "error", err)
			}
		}()
	}

	return application.ServeHTTP()
}
