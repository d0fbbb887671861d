package catalog

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewCorrelationIDIsUniqueAndParsesAsUUID(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	if a == b {
		t.Fatal("expected distinct correlation IDs")
	}
	if len(a) != len("00000000-0000-0000-0000-000000000000") {
		t.Fatalf("unexpected correlation ID shape: %q", a)
	}
}

func TestLoggerWritesCategorizedLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Request("corr-1", "uri=x")
	l.Response("corr-1", "found")
	l.Error("corr-1", "boom")

	out := buf.String()
	for _, want := range []string{"[corr-1] REQUEST uri=x", "[corr-1] RESPONSE found", "[corr-1] ERROR boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestNilWriterLoggerDiscardsSilently(t *testing.T) {
	l := NewLogger(nil)
	l.Request("corr-1", "uri=x") // must not panic
}
