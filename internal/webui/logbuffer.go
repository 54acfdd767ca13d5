// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package webui

import (
	"strings"
	"sync"
)

// logBuffer is a bounded, thread-safe line buffer behind the dashboard log
// pane. Writers append whole lines; once the cap is reached the oldest
// lines fall off.
type logBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newLogBuffer(max int) *logBuffer {
	if max <= 0 {
		max = 500
	}
	return &logBuffer{max: max}
}

// Write appends the given text line by line. The progress filter upstream
// guarantees whole, newline-terminated lines.
func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		b.lines = append(b.lines, line)
	}
	if over := len(b.lines) - b.max; over > 0 {
		b.lines = append([]string(nil), b.lines[over:]...)
	}
	return len(p), nil
}

// String returns the buffered lines joined with newlines.
func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

// Reset clears the buffer at the start of a new run.
func (b *logBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
