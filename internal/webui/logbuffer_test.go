package webui

import (
	"fmt"
	"testing"
)

func TestLogBuffer(t *testing.T) {
	lb := newLogBuffer(10)
	if got := lb.String(); got != "" {
		t.Errorf("empty buffer String() = %q", got)
	}

	fmt.Fprintf(lb, "first\n")
	fmt.Fprintf(lb, "second\nthird\n")

	want := "first\nsecond\nthird\n"
	if got := lb.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	lb.Reset()
	if got := lb.String(); got != "" {
		t.Errorf("String() after Reset = %q", got)
	}
}

func TestLogBufferDropsOldest(t *testing.T) {
	lb := newLogBuffer(3)
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(lb, "line %d\n", i)
	}

	want := "line 3\nline 4\nline 5\n"
	if got := lb.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
