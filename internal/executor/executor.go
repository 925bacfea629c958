// Package executor defines the code execution contract: the request and
// result types exchanged with the sandbox, the closed set of outcome
// statuses, and the Executor interface implemented by the Docker backend
// and wrapped by the Dispatcher.
package executor

import (
	"context"
	"time"
)

// Status classifies the outcome of a single execution. Exactly one status
// applies to every request; precedence on ambiguous outcomes is
// SecurityViolation > ResourceExceeded/Timeout > SyntaxError > RuntimeFault > Success.
type Status string

const (
	// StatusSuccess means the code ran to completion with exit code 0.
	StatusSuccess Status = "success"
	// StatusSyntaxError means the code failed to compile and never ran.
	StatusSyntaxError Status = "syntax_error"
	// StatusRuntimeFault means the code raised an uncaught exception.
	StatusRuntimeFault Status = "runtime_fault"
	// StatusTimeout means the wall-clock ceiling was hit and the sandbox
	// was forcibly terminated.
	StatusTimeout Status = "timeout"
	// StatusResourceExceeded means a memory, CPU-time, or output-size
	// ceiling was hit.
	StatusResourceExceeded Status = "resource_exceeded"
	// StatusSecurityViolation means the code referenced a capability
	// outside the allow-list.
	StatusSecurityViolation Status = "security_violation"
	// StatusInternalError means the engine itself failed (e.g. no sandbox
	// could be allocated). The only status worth paging anyone over.
	StatusInternalError Status = "internal_error"
)

// Request is a single code execution request. Immutable once accepted.
type Request struct {
	// Code is the untrusted source text. Must be non-empty.
	Code string `json:"code"`
	// Stdin is optional input made available to the program.
	Stdin string `json:"stdin,omitempty"`
	// TimeoutMS optionally overrides the default wall-clock timeout.
	// Zero means "use the server default"; values above the server hard
	// maximum are rejected before execution.
	TimeoutMS int64 `json:"timeout_ms,omitempty"`
}

// Result is the structured outcome of one execution. Stdout and Stderr are
// capped at the configured output limit; Message is a single-line,
// user-safe diagnostic present only on non-Success outcomes.
type Result struct {
	Status     Status `json:"status"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// OK reports whether the execution completed successfully.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

// InternalError builds a Result for an engine-side failure. The message is
// fixed: internal detail goes to the log, never to the caller.
func InternalError(elapsed time.Duration) *Result {
	return &Result{
		Status:     StatusInternalError,
		DurationMS: elapsed.Milliseconds(),
		Message:    "execution engine error",
	}
}

// Executor runs code in an isolated environment. Implementations must
// never let a fault in the submitted code escape as an error or panic:
// every outcome of running untrusted input is a Result. A non-nil error
// indicates an engine-side failure only.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}
