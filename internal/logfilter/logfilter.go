// Package logfilter suppresses terminal progress-bar noise in conversion
// logs. Implements: prd005-dashboard (R3.2, R3.3).
package logfilter

import (
	"bytes"
	"io"
	"strings"
)

// noisePatterns mark progress-bar repaint lines emitted by OCR engines.
var noisePatterns = []string{"it/s]", "%|", "it/s"}

// Writer forwards whole lines to dst, dropping progress-bar repaints,
// carriage-return overwrites, and blank lines. Partial writes are buffered
// until a line terminator arrives.
type Writer struct {
	dst io.Writer
	buf bytes.Buffer

	// skipNext drops the segment following a carriage return, which is a
	// repaint of the previous line.
	skipNext bool
}

// New returns a Writer forwarding filtered lines to dst.
func New(dst io.Writer) *Writer {
	return &Writer{dst: dst}
}

// Write buffers p and forwards complete lines that pass the filter. It
// always reports the full input length as consumed.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexAny(w.buf.Bytes(), "\r\n")
		if i < 0 {
			return len(p), nil
		}
		line := string(w.buf.Next(i))
		term, _ := w.buf.ReadByte()
		if err := w.emit(line); err != nil {
			return len(p), err
		}
		w.skipNext = term == '\r'
	}
}

// Flush forwards any buffered trailing text that has no line terminator.
func (w *Writer) Flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	line := w.buf.String()
	w.buf.Reset()
	return w.emit(line)
}

func (w *Writer) emit(line string) error {
	if w.skipNext {
		return nil
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}
	for _, p := range noisePatterns {
		if strings.Contains(line, p) {
			return nil
		}
	}
	_, err := io.WriteString(w.dst, line+"\n")
	return err
}
