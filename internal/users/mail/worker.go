// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/metrics"
)

// # Worker

// Worker renders and sends the mails enqueued by [QueueDispatcher].
type Worker struct {
	composer *Composer
	sender   Sender
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewWorker creates a [Worker]. recorder may be nil.
func NewWorker(composer *Composer, sender Sender, recorder *metrics.Metrics, logger *slog.Logger) *Worker {
	return &Worker{composer: composer, sender: sender, metrics: recorder, logger: logger}
}

// Register binds the mail task types on mux.
func (worker *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskConfirmation, worker.HandleConfirmation)
	mux.HandleFunc(TaskPasswordReset, worker.HandlePasswordReset)
}

// HandleConfirmation delivers one confirmation mail.
func (worker *Worker) HandleConfirmation(context context.Context, task *asynq.Task) error {
	return worker.handle(context, task, worker.composer.Confirmation)
}

// HandlePasswordReset delivers one password reset mail.
func (worker *Worker) HandlePasswordReset(context context.Context, task *asynq.Task) error {
	return worker.handle(context, task, worker.composer.PasswordReset)
}

/*
handle decodes the payload, renders the message and sends it.

Description: Malformed payloads are never retried. Send failures are returned
to asynq, which redelivers up to [constants.MailMaxRetry] times.

Parameters:
  - context: context.Context
  - task: *asynq.Task
  - compose: renders the message for the task type

Returns:
  - error: nil on delivery, asynq.SkipRetry wrapped for bad payloads
*/
func (worker *Worker) handle(context context.Context, task *asynq.Task, compose func(address, token string) (Message, error)) error {
	logger := worker.logger.With(slog.String("task", task.Type()))

	var payload Payload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.Address == "" || payload.Token == "" {
		worker.metrics.RecordMail(task.Type(), metrics.OutcomeFailure)
		logger.Error("mail_payload_invalid", slog.Any("error", err))
		return fmt.Errorf("mail_payload_invalid: %w", asynq.SkipRetry)
	}

	message, err := compose(payload.Address, payload.Token)
	if err != nil {
		worker.metrics.RecordMail(task.Type(), metrics.OutcomeFailure)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if err := worker.sender.Send(context, message); err != nil {
		worker.metrics.RecordMail(task.Type(), metrics.OutcomeFailure)
		logger.Warn("mail_send_failed", slog.String("to", payload.Address), slog.Any("error", err))
		return fmt.Errorf("mail_send_failed: %w", err)
	}

	worker.metrics.RecordMail(task.Type(), metrics.OutcomeSuccess)
	logger.Info("mail_sent", slog.String("to", payload.Address))
	return nil
}

// # Server

// NewServer builds the asynq server consuming the mail queue.
func NewServer(redis asynq.RedisConnOpt, concurrency int, logger *slog.Logger) *asynq.Server {
	return asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{constants.QueueMail: 1},
		Logger:      NewAsynqLogger(logger),
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Error("mail_task_failed", slog.String("task", task.Type()), slog.Any("error", err))
		}),
	})
}

// # Logging Bridge

// AsynqLogger adapts [slog.Logger] to asynq.Logger.
type AsynqLogger struct {
	logger *slog.Logger
}

// NewAsynqLogger wraps logger for asynq's internal messages.
func NewAsynqLogger(logger *slog.Logger) *AsynqLogger {
	return &AsynqLogger{logger: logger.With(slog.String("component", "asynq"))}
}

func (bridge *AsynqLogger) Debug(args ...any) { bridge.logger.Debug(fmt.Sprint(args...)) }
func (bridge *AsynqLogger) Info(args ...any)  { bridge.logger.Info(fmt.Sprint(args...)) }
func (bridge *AsynqLogger) Warn(args ...any)  { bridge.logger.Warn(fmt.Sprint(args...)) }
func (bridge *AsynqLogger) Error(args ...any) { bridge.logger.Error(fmt.Sprint(args...)) }

// Fatal logs and exits, as asynq.Logger requires.
func (bridge *AsynqLogger) Fatal(args ...any) {
	bridge.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
