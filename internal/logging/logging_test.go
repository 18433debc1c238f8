package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != log.Default() {
		t.Error("expected default logger without a context value")
	}

	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)
	ctx := WithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected logger stored in context")
	}

	FromContext(ctx).Debug("hello", "n", 3)
	if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "n=3") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	NewProgress(New(&buf, log.InfoLevel)).Done("Packed 3 sprites")
	if !strings.Contains(buf.String(), "Packed 3 sprites (") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, log.InfoLevel).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output should be filtered, got %q", buf.String())
	}
}
