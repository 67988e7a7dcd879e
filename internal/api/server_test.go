// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/milize/internal/api"
	"github.com/taibuivan/milize/internal/platform/config"
	"github.com/taibuivan/milize/internal/platform/ctxutil"
	"github.com/taibuivan/milize/internal/platform/sec"
)

type staticVerifier struct{}

func (staticVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &sec.AuthClaims{UserID: "123456789012345678", Authority: sec.AuthorityMember}, nil
}

type whoami struct{}

func (whoami) RegisterRoutes(router chi.Router) {
	router.Get("/whoami", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = io.WriteString(writer, ctxutil.GetAuthUser(request.Context()).UserID)
	})
}

func TestServer_CommandSurfaceRequiresToken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ok := func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) }
	server := api.NewServer(ctx, &config.Config{ServerPort: "0", Environment: "test"},
		slog.New(slog.NewTextHandler(io.Discard, nil)), staticVerifier{},
		api.Handlers{Liveness: ok, Readiness: ok, Domains: []api.RouteRegistrar{whoami{}}})

	serve := func(path, token string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusOK, serve("/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve("/api/v1/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve("/api/v1/whoami", "forged").Code)

	recorder := serve("/api/v1/whoami", "good")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "123456789012345678", recorder.Body.String())
}
