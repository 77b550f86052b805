// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/metrics"
	"github.com/taibuivan/epiclogue/internal/users/mail"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// # Composer

func TestComposer(t *testing.T) {
	composer := mail.NewComposer("no-reply@epiclogue.com", "https://www.epiclogue.com/")

	tests := []struct {
		name     string
		compose  func(address, token string) (mail.Message, error)
		wantLink string
	}{
		{"confirmation", composer.Confirmation, "https://www.epiclogue.com/mailauth?email=reader%40epiclogue.com&amp;token=abc123"},
		{"password reset", composer.PasswordReset, "https://www.epiclogue.com/findPass?email=reader%40epiclogue.com&amp;token=abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, err := tt.compose("reader@epiclogue.com", "abc123")
			require.NoError(t, err)

			assert.Equal(t, "no-reply@epiclogue.com", message.From)
			assert.Equal(t, "reader@epiclogue.com", message.To)
			assert.NotEmpty(t, message.Subject)
			assert.Contains(t, message.HTML, tt.wantLink)
		})
	}
}

func TestComposer_EscapesAddress(t *testing.T) {
	composer := mail.NewComposer("no-reply@epiclogue.com", "https://www.epiclogue.com")

	message, err := composer.Confirmation("<script>@epiclogue.com", "abc")
	require.NoError(t, err)
	assert.NotContains(t, message.HTML, "<script>@")
}

// # Queue Dispatcher

type recordingEnqueuer struct {
	tasks   []*asynq.Task
	options [][]asynq.Option
	err     error
}

func (enqueuer *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, options ...asynq.Option) (*asynq.TaskInfo, error) {
	if enqueuer.err != nil {
		return nil, enqueuer.err
	}
	enqueuer.tasks = append(enqueuer.tasks, task)
	enqueuer.options = append(enqueuer.options, options)
	return &asynq.TaskInfo{ID: "task-1", Queue: constants.QueueMail}, nil
}

func TestQueueDispatcher(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	recorder := metrics.New(prometheus.NewRegistry())
	dispatcher := mail.NewQueueDispatcher(enqueuer, recorder)

	require.NoError(t, dispatcher.SendConfirmation(context.Background(), "reader@epiclogue.com", "tok-1"))
	require.NoError(t, dispatcher.SendPasswordReset(context.Background(), "reader@epiclogue.com", "tok-2"))

	require.Len(t, enqueuer.tasks, 2)
	assert.Equal(t, mail.TaskConfirmation, enqueuer.tasks[0].Type())
	assert.Equal(t, mail.TaskPasswordReset, enqueuer.tasks[1].Type())

	var payload mail.Payload
	require.NoError(t, json.Unmarshal(enqueuer.tasks[1].Payload(), &payload))
	assert.Equal(t, mail.Payload{Address: "reader@epiclogue.com", Token: "tok-2"}, payload)

	assert.Contains(t, enqueuer.options[0], asynq.Queue(constants.QueueMail))
	assert.Contains(t, enqueuer.options[0], asynq.MaxRetry(constants.MailMaxRetry))

	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.MailTasks.WithLabelValues(mail.TaskConfirmation, "enqueued")))
}

func TestQueueDispatcher_EnqueueFailure(t *testing.T) {
	dispatcher := mail.NewQueueDispatcher(&recordingEnqueuer{err: errors.New("redis down")}, nil)

	err := dispatcher.SendConfirmation(context.Background(), "reader@epiclogue.com", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

// # Worker

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (sender *recordingSender) Send(_ context.Context, message mail.Message) error {
	if sender.err != nil {
		return sender.err
	}
	sender.sent = append(sender.sent, message)
	return nil
}

func task(t *testing.T, taskType string, payload any) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, body)
}

func TestWorker(t *testing.T) {
	composer := mail.NewComposer("no-reply@epiclogue.com", "https://www.epiclogue.com")

	t.Run("delivers confirmation", func(t *testing.T) {
		sender := &recordingSender{}
		recorder := metrics.New(prometheus.NewRegistry())
		worker := mail.NewWorker(composer, sender, recorder, discardLogger())

		err := worker.HandleConfirmation(context.Background(),
			task(t, mail.TaskConfirmation, mail.Payload{Address: "reader@epiclogue.com", Token: "tok"}))
		require.NoError(t, err)

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "reader@epiclogue.com", sender.sent[0].To)
		assert.Contains(t, sender.sent[0].HTML, "/mailauth?")
		assert.Equal(t, 1.0, testutil.ToFloat64(recorder.MailTasks.WithLabelValues(mail.TaskConfirmation, metrics.OutcomeSuccess)))
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		worker := mail.NewWorker(composer, &recordingSender{}, nil, discardLogger())

		err := worker.HandlePasswordReset(context.Background(), asynq.NewTask(mail.TaskPasswordReset, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("send failure is retried", func(t *testing.T) {
		worker := mail.NewWorker(composer, &recordingSender{err: errors.New("throttled")}, nil, discardLogger())

		err := worker.HandlePasswordReset(context.Background(),
			task(t, mail.TaskPasswordReset, mail.Payload{Address: "reader@epiclogue.com", Token: "tok"}))
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("register binds both task types", func(t *testing.T) {
		mux := asynq.NewServeMux()
		mail.NewWorker(composer, &recordingSender{}, nil, discardLogger()).Register(mux)

		for _, taskType := range []string{mail.TaskConfirmation, mail.TaskPasswordReset} {
			handler, pattern := mux.Handler(asynq.NewTask(taskType, nil))
			assert.NotNil(t, handler)
			assert.Equal(t, taskType, pattern)
		}
	})
}

// # Senders

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (client *fakeSES) SendEmail(_ context.Context, input *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	client.input = input
	if client.err != nil {
		return nil, client.err
	}
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESSender(t *testing.T) {
	client := &fakeSES{}
	sender := mail.NewSESSender(client)

	err := sender.Send(context.Background(), mail.Message{
		From: "no-reply@epiclogue.com", To: "reader@epiclogue.com", Subject: "hi", HTML: "<p>hi</p>",
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "no-reply@epiclogue.com", *client.input.FromEmailAddress)
	assert.Equal(t, []string{"reader@epiclogue.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>hi</p>", *client.input.Content.Simple.Body.Html.Data)

	client.err = errors.New("MessageRejected")
	assert.Error(t, sender.Send(context.Background(), mail.Message{To: "x@epiclogue.com"}))
}

func TestNewSESClient(t *testing.T) {
	client, err := mail.NewSESClient(context.Background(), mail.SESOptions{
		Region:          "ap-northeast-2",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:4566",
	})
	require.NoError(t, err)
	assert.Equal(t, "ap-northeast-2", client.Options().Region)
	assert.Equal(t, "http://localhost:4566", *client.Options().BaseEndpoint)
}

func TestLogSender(t *testing.T) {
	var buffer bytes.Buffer
	sender := mail.NewLogSender(slog.New(slog.NewJSONHandler(&buffer, nil)))

	require.NoError(t, sender.Send(context.Background(), mail.Message{To: "reader@epiclogue.com", Subject: "hi"}))
	assert.Contains(t, buffer.String(), `"msg":"mail_logged"`)
	assert.Contains(t, buffer.String(), "reader@epiclogue.com")
}
