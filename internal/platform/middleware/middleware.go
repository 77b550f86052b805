// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

Each middleware decorates an http.Handler so domain handlers only deal with
account semantics.

Standard Stack:

  - Trace: RequestID generation for log correlation.
  - Log: per-request structured logging (slog).
  - Guard: rate limiting and CORS validation.
  - Safe: panic recovery so one request cannot crash the server.
  - Measure: Prometheus request counters and latency.
  - Identify: session token verification (see authz.go).
*/
package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taibuivan/epiclogue/internal/platform/apperr"
	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/ctxutil"
	"github.com/taibuivan/epiclogue/internal/platform/metrics"
	"github.com/taibuivan/epiclogue/internal/platform/respond"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Prefer the id assigned by an upstream proxy
			requestID := request.Header.Get(constants.HeaderXRequestID)

			// UUID v7 keeps ids time-sortable in the log store
			if requestID == "" {
				if id, err := uuid.NewV7(); err == nil {
					requestID = id.String()
				} else {
					requestID = uuid.NewString()
				}
			}

			context := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(context))
		})
	}
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// StructuredLogger logs every finished request and injects a request-scoped
// logger into the context.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			context := ctxutil.WithLogger(request.Context(), requestLogger)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrappedWriter, request.WithContext(context))

			logLevel := slog.LevelInfo
			if wrappedWriter.status >= http.StatusInternalServerError {
				logLevel = slog.LevelError
			} else if wrappedWriter.status >= http.StatusBadRequest {
				logLevel = slog.LevelWarn
			}

			requestLogger.Log(context, logLevel, "http_request_finished",
				slog.Int("status", wrappedWriter.status),
				slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			)
		})
	}
}

// # Rate Limiting

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-IP token bucket.
//
// Idle buckets are dropped by [RateLimiter.Run]; without it the client map
// grows with every distinct address.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rateLimitClient
	limit     rate.Limit
	burst     int
	clientTTL time.Duration
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst.
func NewRateLimiter(rps float64, burst int, clientTTL time.Duration) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*rateLimitClient),
		limit:     rate.Limit(rps),
		burst:     burst,
		clientTTL: clientTTL,
		now:       time.Now,
	}
}

// Run sweeps idle clients every interval until context is cancelled.
func (limiter *RateLimiter) Run(context context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Sweep()
		case <-context.Done():
			return
		}
	}
}

// Sweep removes clients idle for longer than the client TTL.
func (limiter *RateLimiter) Sweep() {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	for ip, client := range limiter.clients {
		if now.Sub(client.lastSeen) > limiter.clientTTL {
			delete(limiter.clients, ip)
		}
	}
}

// Tracked returns the number of client buckets currently held.
func (limiter *RateLimiter) Tracked() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return len(limiter.clients)
}

// Allow consumes one token from the bucket of ip.
func (limiter *RateLimiter) Allow(ip string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	client, found := limiter.clients[ip]
	if !found {
		client = &rateLimitClient{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.clients[ip] = client
	}
	client.lastSeen = limiter.now()

	return client.limiter.Allow()
}

// Middleware rejects requests over the limit with 429.
func (limiter *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !limiter.Allow(RealIP(request)) {
			retryAfter := limiter.retryAfterSeconds()
			writer.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			respond.Error(writer, request, apperr.RateLimited(retryAfter))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// retryAfterSeconds is the time for one token to refill, rounded up.
func (limiter *RateLimiter) retryAfterSeconds() int {
	if limiter.limit <= 0 {
		return 1
	}
	seconds := int(math.Ceil(1 / float64(limiter.limit)))
	return max(seconds, 1)
}

// RateLimit builds a limiter with the default budget and starts its janitor,
// which stops when context is cancelled.
func RateLimit(context context.Context) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(
		constants.DefaultRateLimitRPS,
		constants.DefaultRateLimitBurst,
		constants.RateLimitClientTTL,
	)
	go limiter.Run(context, constants.RateLimitCleanupInterval)
	return limiter.Middleware
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs the stack trace and returns 500.
func PanicRecovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				stackTrace := make([]byte, 4096)
				length := runtime.Stack(stackTrace, false)

				ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "panic_recovered",
					slog.Any("error", recovered),
					slog.String("stack", string(stackTrace[:length])),
				)

				respond.Error(writer, request, apperr.Internal(nil))
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Metrics

// Metrics records request count and latency by chi route pattern. Using the
// pattern instead of the raw path keeps label cardinality bounded.
func Metrics(recorder *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			startTime := time.Now()
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrappedWriter, request)

			route := "unmatched"
			if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
				if pattern := routeContext.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			recorder.ObserveHTTP(request.Method, route, strconv.Itoa(wrappedWriter.status), time.Since(startTime))
		})
	}
}

// # Cross-Origin Resource Sharing

// CORS allows credentialed cross-origin calls from originDomain and its
// subdomains. With allowAny every origin is reflected (development only).
func CORS(allowAny bool, originDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			if allowAny || originAllowed(origin, originDomain) {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
				header.Add("Vary", "Origin")
			}

			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// originAllowed reports whether origin's host is domain or one of its subdomains.
func originAllowed(origin, domain string) bool {
	if domain == "" {
		return false
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// # Middleware Helpers

// RealIP extracts the client IP, respecting common proxy headers.
func RealIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
