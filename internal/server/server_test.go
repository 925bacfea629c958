package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-sandbox/internal/config"
	"github.com/sakif/code-sandbox/internal/executor"
	"github.com/sakif/code-sandbox/internal/server"
)

type stubExecutor struct{}

func (stubExecutor) Execute(ctx context.Context, req executor.Request) (*executor.Result, error) {
	return &executor.Result{
		Status:     executor.StatusSuccess,
		Stdout:     "ok\n",
		DurationMS: 1,
	}, nil
}

func testServer(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := config.Config{
		Port:        8080,
		Workers:     2,
		QueueSize:   4,
		MaxTimeout:  10 * time.Second,
		MaxCodeSize: 64 * 1024,
	}
	return server.New(cfg, logger, stubExecutor{}).Router()
}

func TestRoutes(t *testing.T) {
	router := testServer(t)

	t.Run("execute", func(t *testing.T) {
		body := bytes.NewBufferString(`{"code":"print('ok')"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/execute", body)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var res executor.Result
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, executor.StatusSuccess, res.Status)
		assert.Equal(t, "ok\n", res.Stdout)
	})

	t.Run("execute rejects GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/execute", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("healthz", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "sandbox_queue_depth")
	})
}
