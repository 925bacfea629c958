package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/code-sandbox/internal/executor"
	"github.com/sakif/code-sandbox/internal/executor/capture"
)

func buf(t *testing.T, limit int, content string) *capture.Buffer {
	t.Helper()
	b := capture.NewBuffer(limit)
	_, err := b.Write([]byte(content))
	assert.NoError(t, err)
	return b
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		exitCode    int
		timedOut    bool
		stdout      string
		stderr      string
		wantStatus  executor.Status
		wantMessage string
	}{
		{
			name:       "clean exit is success",
			exitCode:   0,
			stdout:     "4\n",
			wantStatus: executor.StatusSuccess,
		},
		{
			name:        "security violation",
			exitCode:    exitSecurityViolation,
			stderr:      "capability 'os' not permitted\n",
			wantStatus:  executor.StatusSecurityViolation,
			wantMessage: "capability 'os' not permitted",
		},
		{
			name:        "timeout",
			timedOut:    true,
			stdout:      "partial",
			wantStatus:  executor.StatusTimeout,
			wantMessage: "execution exceeded 1000ms",
		},
		{
			name:        "syntax error",
			exitCode:    exitSyntaxError,
			stderr:      "SyntaxError: invalid syntax (line 1)\n",
			wantStatus:  executor.StatusSyntaxError,
			wantMessage: "SyntaxError: invalid syntax (line 1)",
		},
		{
			name:        "memory rlimit",
			exitCode:    exitMemoryExceeded,
			stderr:      "memory limit exceeded\n",
			wantStatus:  executor.StatusResourceExceeded,
			wantMessage: "memory limit exceeded",
		},
		{
			name:        "oom kill",
			exitCode:    exitOOMKilled,
			wantStatus:  executor.StatusResourceExceeded,
			wantMessage: "memory limit exceeded",
		},
		{
			name:        "cpu budget",
			exitCode:    exitCPUExceeded,
			wantStatus:  executor.StatusResourceExceeded,
			wantMessage: "cpu time limit exceeded",
		},
		{
			name:        "uncaught exception",
			exitCode:    1,
			stderr:      "before the crash\nZeroDivisionError: division by zero\n",
			wantStatus:  executor.StatusRuntimeFault,
			wantMessage: "ZeroDivisionError: division by zero",
		},
		{
			name:        "nonzero exit without stderr",
			exitCode:    3,
			wantStatus:  executor.StatusRuntimeFault,
			wantMessage: "execution failed with exit code 3",
		},
		{
			name:        "security violation beats timeout",
			exitCode:    exitSecurityViolation,
			timedOut:    true,
			stderr:      "capability 'socket' not permitted\n",
			wantStatus:  executor.StatusSecurityViolation,
			wantMessage: "capability 'socket' not permitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := buf(t, 1024, tt.stdout)
			stderr := buf(t, 1024, tt.stderr)

			res := classify(tt.exitCode, tt.timedOut, time.Second, stdout, stderr, 25*time.Millisecond)

			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, res.Message)
			}
			assert.Equal(t, tt.stdout, res.Stdout)
			assert.Equal(t, int64(25), res.DurationMS)
		})
	}
}

func TestClassifyTruncatedOutput(t *testing.T) {
	// A clean exit still classifies as resource_exceeded when the output
	// cap was hit: the full output was never delivered.
	stdout := buf(t, 8, "way more than eight bytes")
	stderr := buf(t, 8, "")

	res := classify(0, false, time.Second, stdout, stderr, time.Millisecond)

	assert.Equal(t, executor.StatusResourceExceeded, res.Status)
	assert.Equal(t, "output limit exceeded", res.Message)
	assert.Contains(t, res.Stdout, capture.TruncationMarker)
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "", lastLine(""))
	assert.Equal(t, "only", lastLine("only"))
	assert.Equal(t, "last", lastLine("first\nlast\n"))
	assert.Equal(t, "last", lastLine("first\nlast\n\n  \n"))
}
