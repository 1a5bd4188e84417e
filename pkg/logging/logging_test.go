package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, false, "batch")
	l.Debug("hidden")
	l.Info("shown", "file", "a.png")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record leaked: %s", out)
	}
	if !strings.Contains(out, "component=batch") || !strings.Contains(out, "file=a.png") {
		t.Fatalf("missing attributes: %s", out)
	}

	buf.Reset()
	NewWriter(&buf, true, "").Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("verbose logger dropped debug: %s", buf.String())
	}
}
