// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers the account lifecycle mails: email confirmation after
registration and the password reset link.

# Architecture

  - Dispatcher: what the HTTP handlers call. [QueueDispatcher] turns each
    request into an asynq task so the request never waits on a mail provider.
  - Worker: consumes the tasks in cmd/worker, renders the HTML body with
    [Composer] and hands it to a [Sender].
  - Sender: Amazon SES ([SESSender]) or the log ([LogSender]) for local runs.
*/
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// # Contracts

// Dispatcher schedules lifecycle mails. Implementations must not block on
// delivery.
type Dispatcher interface {
	SendConfirmation(context context.Context, address, token string) error
	SendPasswordReset(context context.Context, address, token string) error
}

// Sender delivers one rendered message.
type Sender interface {
	Send(context context.Context, message Message) error
}

// Message is a rendered mail ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// # Composition

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

const (
	subjectConfirmation  = "이메일 인증을 완료해주세요."
	subjectPasswordReset = "비밀번호 재설정을 위해 이메일 인증을 완료해주세요!"
)

type templateData struct {
	Address string
	Link    string
}

// Composer renders lifecycle mails with links back to the web client.
type Composer struct {
	from    string
	baseURL string
}

// NewComposer creates a [Composer]. baseURL is the public origin of the web
// client, e.g. https://www.epiclogue.com.
func NewComposer(from, baseURL string) *Composer {
	return &Composer{from: from, baseURL: strings.TrimRight(baseURL, "/")}
}

// Confirmation renders the mail carrying the email confirmation link.
func (composer *Composer) Confirmation(address, token string) (Message, error) {
	return composer.render("confirmation.html", subjectConfirmation, "/mailauth", address, token)
}

// PasswordReset renders the mail carrying the password reset link.
func (composer *Composer) PasswordReset(address, token string) (Message, error) {
	return composer.render("password_reset.html", subjectPasswordReset, "/findPass", address, token)
}

func (composer *Composer) render(name, subject, path, address, token string) (Message, error) {
	query := url.Values{}
	query.Set("email", address)
	query.Set("token", token)

	data := templateData{
		Address: address,
		Link:    composer.baseURL + path + "?" + query.Encode(),
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return Message{}, fmt.Errorf("mail_render_%s_failed: %w", strings.TrimSuffix(name, ".html"), err)
	}

	return Message{From: composer.from, To: address, Subject: subject, HTML: body.String()}, nil
}
