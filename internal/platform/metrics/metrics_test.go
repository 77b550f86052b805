// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epiclogue/internal/platform/metrics"
)

func TestMetrics_Record(t *testing.T) {
	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	m.RecordAuth("login", metrics.OutcomeSuccess)
	m.RecordAuth("login", metrics.OutcomeSuccess)
	m.RecordAuth("login", "INVALID_CREDENTIAL")
	m.RecordMail("confirmation", metrics.OutcomeFailure)
	m.ObserveHTTP(http.MethodPost, "/api/v1/auth/login", "200", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "INVALID_CREDENTIAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailTasks.WithLabelValues("confirmation", metrics.OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodPost, "/api/v1/auth/login", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.RecordAuth("login", metrics.OutcomeSuccess)
		m.RecordMail("reset", metrics.OutcomeSuccess)
		m.ObserveHTTP(http.MethodGet, "/", "200", time.Millisecond)
	})
}

func TestHandler_ExposesCollectors(t *testing.T) {
	registry := metrics.NewRegistry()
	m := metrics.New(registry)
	m.RecordAuth("join", metrics.OutcomeSuccess)

	recorder := httptest.NewRecorder()
	metrics.Handler(registry).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "epiclogue_auth_operations_total")
	assert.Contains(t, recorder.Body.String(), "go_goroutines")
}
