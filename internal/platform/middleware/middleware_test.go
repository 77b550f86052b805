// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/ctxutil"
	"github.com/taibuivan/epiclogue/internal/platform/metrics"
	"github.com/taibuivan/epiclogue/internal/platform/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "upstream-id", seen)
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 2, time.Minute)
	handler := limiter.Middleware(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:5555"
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.2:5555"
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 2, limiter.Tracked())
}

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	limiter := middleware.NewRateLimiter(10, 10, 0)
	require.True(t, limiter.Allow("10.0.0.1"))
	require.Equal(t, 1, limiter.Tracked())

	time.Sleep(time.Millisecond)
	limiter.Sweep()
	assert.Zero(t, limiter.Tracked())
}

func TestRateLimit_JanitorStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	_ = middleware.RateLimit(ctx)
	cancel()
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "boom")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name      string
		allowAny  bool
		origin    string
		wantAllow bool
	}{
		{"apex_domain", false, "https://epiclogue.com", true},
		{"subdomain", false, "https://www.epiclogue.com", true},
		{"lookalike_suffix", false, "https://evil-epiclogue.com", false},
		{"foreign", false, "https://example.org", false},
		{"development_reflects_all", true, "http://localhost:3000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(tt.allowAny, "epiclogue.com")(okHandler())

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			if tt.wantAllow {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := middleware.CORS(false, "epiclogue.com")(okHandler())

	request := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	request.Header.Set(constants.HeaderOrigin, "https://epiclogue.com")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	recorder := metrics.New(metrics.NewRegistry())

	router := chi.NewRouter()
	router.Use(middleware.Metrics(recorder))
	router.Get("/users/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.HTTPRequests.WithLabelValues(http.MethodGet, "/users/{id}", "418")))
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.3")
	assert.Equal(t, "198.51.100.3", middleware.RealIP(request))
}
