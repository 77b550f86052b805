// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// # Amazon SES

// SESAPI is the part of *sesv2.Client the sender uses.
type SESAPI interface {
	SendEmail(context context.Context, input *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESOptions configure [NewSESClient].
type SESOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	// Endpoint overrides the regional endpoint, e.g. for LocalStack.
	Endpoint string
}

// NewSESClient builds an SES v2 client. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain.
func NewSESClient(context context.Context, opts SESOptions) (*sesv2.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context, loaders...)
	if err != nil {
		return nil, fmt.Errorf("mail: failed to load aws config: %w", err)
	}

	return sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

// SESSender delivers messages through Amazon SES.
type SESSender struct {
	client SESAPI
}

// NewSESSender creates a [SESSender].
func NewSESSender(client SESAPI) *SESSender {
	return &SESSender{client: client}
}

// Send submits message as a simple UTF-8 HTML mail.
func (sender *SESSender) Send(context context.Context, message Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(message.From),
		Destination:      &types.Destination{ToAddresses: []string{message.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(message.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(message.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	if _, err := sender.client.SendEmail(context, input); err != nil {
		return fmt.Errorf("ses_send_failed: %w", err)
	}
	return nil
}

// # Log Sender

// LogSender writes messages to the log instead of delivering them
// (MAIL_DRIVER=log).
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (sender *LogSender) Send(_ context.Context, message Message) error {
	sender.logger.Info("mail_logged",
		slog.String("from", message.From),
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("html", message.HTML),
	)
	return nil
}
