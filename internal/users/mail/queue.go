// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/metrics"
)

// # Task Types

const (
	TaskConfirmation  = "mail:confirmation"
	TaskPasswordReset = "mail:password_reset"
)

// Payload is the JSON body of a mail task.
type Payload struct {
	Address string `json:"address"`
	Token   string `json:"token"`
}

// # Queue Dispatcher

// Enqueuer is the part of *asynq.Client the dispatcher uses.
type Enqueuer interface {
	EnqueueContext(context context.Context, task *asynq.Task, options ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher implements [Dispatcher] by enqueueing asynq tasks on the
// mail queue.
type QueueDispatcher struct {
	enqueuer Enqueuer
	metrics  *metrics.Metrics
}

// NewQueueDispatcher creates a [QueueDispatcher]. recorder may be nil.
func NewQueueDispatcher(enqueuer Enqueuer, recorder *metrics.Metrics) *QueueDispatcher {
	return &QueueDispatcher{enqueuer: enqueuer, metrics: recorder}
}

func (dispatcher *QueueDispatcher) SendConfirmation(context context.Context, address, token string) error {
	return dispatcher.enqueue(context, TaskConfirmation, Payload{Address: address, Token: token})
}

func (dispatcher *QueueDispatcher) SendPasswordReset(context context.Context, address, token string) error {
	return dispatcher.enqueue(context, TaskPasswordReset, Payload{Address: address, Token: token})
}

func (dispatcher *QueueDispatcher) enqueue(context context.Context, taskType string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mail_payload_encode_failed: %w", err)
	}

	task := asynq.NewTask(taskType, body)
	_, err = dispatcher.enqueuer.EnqueueContext(context, task,
		asynq.Queue(constants.QueueMail),
		asynq.MaxRetry(constants.MailMaxRetry),
	)
	if err != nil {
		dispatcher.metrics.RecordMail(taskType, "enqueue_failed")
		return fmt.Errorf("mail_enqueue_failed: %w", err)
	}

	dispatcher.metrics.RecordMail(taskType, "enqueued")
	return nil
}
