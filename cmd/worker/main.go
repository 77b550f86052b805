// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command worker drains the mail queue filled by the API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration.
//  3. Build the mail sender (Amazon SES or log-only).
//  4. Register mail task handlers on an asynq server.
//  5. Run until SIGINT or SIGTERM, then drain in-flight tasks.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taibuivan/epiclogue/internal/platform/config"
	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/users/mail"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", constants.AppName+"-worker"))
	slog.SetDefault(log)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})).
			With(slog.String("app", constants.AppName+"-worker"))
		slog.SetDefault(log)
	}

	sender, err := newSender(cfg, log)
	must(log, err, "initialize mail sender")

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	must(log, err, "parse redis uri for the mail queue")

	mux := asynq.NewServeMux()
	mail.NewWorker(mail.NewComposer(cfg.MailFrom, cfg.PublicBaseURL), sender, nil, log).Register(mux)

	server := mail.NewServer(redisOpt, cfg.WorkerConcurrency, log)

	log.Info("worker_starting",
		slog.String("mail_driver", cfg.MailDriver),
		slog.Int("concurrency", cfg.WorkerConcurrency),
	)

	// Run blocks until a termination signal arrives and then shuts down.
	if err := server.Run(mux); err != nil {
		log.Error("worker_stopped_with_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("worker_stopped")
}

func newSender(cfg *config.Config, log *slog.Logger) (mail.Sender, error) {
	if cfg.MailDriver != config.MailSES {
		log.Warn("mail_log_driver_enabled", slog.String("note", "messages are logged, not delivered"))
		return mail.NewLogSender(log), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mail.NewSESClient(ctx, mail.SESOptions{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Endpoint:        cfg.SESEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return mail.NewSESSender(client), nil
}

func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed", slog.String("step", step), slog.Any("error", err))
		os.Exit(1)
	}
}
