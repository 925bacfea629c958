package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/code-sandbox/internal/apperror"
	"github.com/sakif/code-sandbox/internal/executor"
)

// ExecuteHandler handles code execution requests.
type ExecuteHandler struct {
	engine       executor.Submitter
	maxCodeSize  int
	maxStdinSize int
	maxTimeout   time.Duration
	logger       *slog.Logger
}

// NewExecuteHandler creates a new ExecuteHandler. maxCodeSize and
// maxStdinSize cap the accepted source text and stdin payload; maxTimeout
// bounds per-request timeout overrides.
func NewExecuteHandler(engine executor.Submitter, maxCodeSize, maxStdinSize int, maxTimeout time.Duration, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		engine:       engine,
		maxCodeSize:  maxCodeSize,
		maxStdinSize: maxStdinSize,
		maxTimeout:   maxTimeout,
		logger:       logger,
	}
}

// HandleExecute processes an incoming code execution request. Validation
// failures and queue saturation map to 400 and 503; every outcome of
// accepted code is a 200 with a structured result, including failures of
// the code itself.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	// Bound the body before decoding; the code and stdin limits with slack
	// for JSON escaping and framing.
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxCodeSize+h.maxStdinSize)*4+4096)

	var req executor.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	if err := h.validate(req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.engine.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ExecuteHandler) validate(req executor.Request) error {
	if req.Code == "" {
		return apperror.ValidationFailed("code", "code cannot be empty")
	}
	if len(req.Code) > h.maxCodeSize {
		return apperror.ValidationFailed("code", "code exceeds the maximum size")
	}
	if len(req.Stdin) > h.maxStdinSize {
		return apperror.ValidationFailed("stdin", "stdin exceeds the maximum size")
	}
	if req.TimeoutMS < 0 {
		return apperror.ValidationFailed("timeout_ms", "timeout_ms must not be negative")
	}
	if limit := h.maxTimeout.Milliseconds(); req.TimeoutMS > limit {
		return apperror.ValidationFailed("timeout_ms", "timeout_ms exceeds the maximum")
	}
	return nil
}
