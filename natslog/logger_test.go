package natslog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn, "[test]")

	l.Debug("should not appear")
	l.Info("should not appear either")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below the configured level, got %q", buf.String())
	}

	l.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected Warn output, got %q", buf.String())
	}
}

func TestWithFieldAppendsKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug, "[test]")

	l.WithField("sid", "abc123").WithField("subject", "orders.new").Warn("dropped frame")

	out := buf.String()
	if !strings.Contains(out, "sid=abc123") || !strings.Contains(out, "subject=orders.new") {
		t.Fatalf("expected both fields in output, got %q", out)
	}
	if !strings.Contains(out, "dropped frame") {
		t.Fatalf("expected original message in output, got %q", out)
	}
}

func TestWithFieldDoesNotMutateParentLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, LevelDebug, "[test]")
	tagged := base.WithField("sid", "xyz")

	base.Info("from base")
	if strings.Contains(buf.String(), "sid=xyz") {
		t.Fatal("base logger output should not carry the derived field")
	}

	buf.Reset()
	tagged.Info("from tagged")
	if !strings.Contains(buf.String(), "sid=xyz") {
		t.Fatal("derived logger output should carry its field")
	}
}

func TestSetLevelAffectsDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, LevelDebug, "[test]")
	tagged := base.WithField("sid", "1")

	base.SetLevel(LevelError)
	tagged.Warn("should be suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected derived logger to honor the shared level change, got %q", buf.String())
	}
}
