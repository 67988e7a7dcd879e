// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/api"
)

func readiness(t *testing.T, checks ...api.Check) (int, map[string]any) {
	t.Helper()
	_, ready := api.NewHealthHandlers(checks, slog.New(slog.NewTextHandler(io.Discard, nil)))

	recorder := httptest.NewRecorder()
	ready(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder.Code, body.Data
}

func TestReadiness(t *testing.T) {
	healthy := api.Check{Name: "postgres", Probe: func(context.Context) error { return nil }}
	broken := api.Check{Name: "redis", Probe: func(context.Context) error { return errors.New("connection refused") }}

	code, body := readiness(t, healthy)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])

	code, body = readiness(t, healthy, broken)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	assert.Len(t, body["checks"], 2)
}

func TestLiveness(t *testing.T) {
	live, _ := api.NewHealthHandlers(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	recorder := httptest.NewRecorder()
	live(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ok"`)
}
