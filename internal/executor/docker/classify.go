package docker

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/code-sandbox/internal/executor"
	"github.com/sakif/code-sandbox/internal/executor/capture"
)

// Exit codes produced outside the harness: the kernel OOM killer and the
// RLIMIT_CPU SIGXCPU delivery (128 + signal number).
const (
	exitOOMKilled   = 137
	exitCPUExceeded = 152
)

// classify maps a finished (or forcibly terminated) sandbox run to exactly
// one Result. Precedence: security violation wins over everything, then the
// resource/timeout ceilings, then syntax errors, then runtime faults.
func classify(exitCode int, timedOut bool, timeout time.Duration, stdout, stderr *capture.Buffer, elapsed time.Duration) *executor.Result {
	res := &executor.Result{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: elapsed.Milliseconds(),
	}

	switch {
	case exitCode == exitSecurityViolation:
		res.Status = executor.StatusSecurityViolation
		res.Message = lastLine(stderr.String())
	case timedOut:
		res.Status = executor.StatusTimeout
		res.Message = fmt.Sprintf("execution exceeded %dms", timeout.Milliseconds())
	case stdout.Truncated() || stderr.Truncated():
		res.Status = executor.StatusResourceExceeded
		res.Message = "output limit exceeded"
	case exitCode == exitMemoryExceeded || exitCode == exitOOMKilled:
		res.Status = executor.StatusResourceExceeded
		res.Message = "memory limit exceeded"
	case exitCode == exitCPUExceeded:
		res.Status = executor.StatusResourceExceeded
		res.Message = "cpu time limit exceeded"
	case exitCode == exitSyntaxError:
		res.Status = executor.StatusSyntaxError
		res.Message = lastLine(stderr.String())
	case exitCode != 0:
		res.Status = executor.StatusRuntimeFault
		res.Message = lastLine(stderr.String())
		if res.Message == "" {
			res.Message = fmt.Sprintf("execution failed with exit code %d", exitCode)
		}
	default:
		res.Status = executor.StatusSuccess
	}

	return res
}

// lastLine returns the final non-empty line of s. The harness always writes
// its diagnostic as the last stderr line, after anything the submission
// printed itself.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
