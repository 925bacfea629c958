// Package capture provides bounded output buffers for sandbox streams.
// A runaway print loop must cost at most the configured cap in memory;
// everything past the cap is dropped and the buffer is marked truncated,
// which the classifier turns into a resource_exceeded outcome.
package capture

import (
	"bytes"
	"sync"
)

// TruncationMarker is appended to a buffer that hit its cap.
const TruncationMarker = "\n... [output truncated]\n"

// Buffer is an io.Writer capped at a maximum byte size. It never returns
// an error from Write: the sandbox stream copier must keep draining the
// pipe even after the cap is hit, otherwise the child blocks on a full
// pipe instead of finishing.
//
// Safe for concurrent use: on a timed-out run the classifier snapshots
// the buffer while the stream copier may still be writing into it.
type Buffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	truncated bool
}

// NewBuffer returns a buffer that stores at most limit bytes of payload
// (the truncation marker is not counted against the limit).
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Write stores p up to the remaining capacity and silently discards the
// rest. The reported length is always len(p).
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.truncated {
		return len(p), nil
	}
	remaining := b.limit - b.buf.Len()
	if len(p) <= remaining {
		b.buf.Write(p)
		return len(p), nil
	}
	b.buf.Write(p[:remaining])
	b.buf.WriteString(TruncationMarker)
	b.truncated = true
	return len(p), nil
}

// String returns the captured output, including the truncation marker if
// the cap was hit.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Len returns the number of payload bytes captured.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.buf.Len()
	if b.truncated {
		n -= len(TruncationMarker)
	}
	return n
}

// Truncated reports whether output was dropped.
func (b *Buffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
