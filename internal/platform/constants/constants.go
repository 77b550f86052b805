// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants holds the fixed values shared across the Epiclogue identity service.

Categories:

  - Server Timing: HTTP server and request deadlines.
  - Rate Limiting: token bucket sizing and janitor intervals.
  - Authentication: token issuer and cookie naming.
  - Storage: schema, collection and key prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "epiclogue-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// Store calls inherit it through the request context.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long in-flight requests get during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	DefaultRateLimitRPS   = 20.0
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often idle IP entries are swept.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is dropped.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the 'iss' claim of session tokens.
	AuthIssuer = "epiclogue.com"

	// AccessTokenCookieName carries the session token between browser and API.
	AccessTokenCookieName = "access_token"

	// AccessTokenCookiePath scopes the cookie to the whole API.
	AccessTokenCookiePath = "/"

	// DefaultSessionTTL matches the 7 day cookie lifetime of the web client.
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Storage

const (
	SchemaUsers = "users"

	// MongoAccountCollection is the collection name used by the Mongo account store.
	MongoAccountCollection = "accounts"
)

// # Redis Prefixes

const (
	RedisPrefixResetToken = "auth:reset_token:"
)

// # Queue

const (
	// QueueMail is the asynq queue consumed by cmd/worker.
	QueueMail = "mail"

	// MailMaxRetry bounds redelivery of a failed mail task.
	MailMaxRetry = 5
)
