package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestDowngradeToInfoOnlyAffectsMatchingWarnings(t *testing.T) {
	r := NewReport()
	r.Add(Warning, "nextCatalog.unresolved", "nextCatalog could not be loaded")
	r.Add(Warning, "other.warning", "some other warning")
	r.Add(Error, "nextCatalog.unresolved", "an error, not a warning, sharing the check ID")

	r.DowngradeToInfo(map[string]bool{"nextCatalog.unresolved": true})

	if r.Messages[0].Severity != Info {
		t.Errorf("matching warning not downgraded: got %v", r.Messages[0].Severity)
	}
	if r.Messages[1].Severity != Warning {
		t.Errorf("non-matching warning was downgraded: got %v", r.Messages[1].Severity)
	}
	if r.Messages[2].Severity != Error {
		t.Errorf("error severity was downgraded despite matching check ID: got %v", r.Messages[2].Severity)
	}
}

func TestWriteJSONReflectsCountsAndDowngrades(t *testing.T) {
	r := NewReport()
	r.Add(Fatal, "catalog.malformed", "unexpected EOF")
	r.Add(Warning, "nextCatalog.unresolved", "nextCatalog could not be loaded")
	r.DowngradeToInfo(map[string]bool{"nextCatalog.unresolved": true})

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Valid {
		t.Error("expected Valid=false with a FATAL message present")
	}
	if out.FatalCount != 1 {
		t.Errorf("FatalCount = %d, want 1", out.FatalCount)
	}
	if out.WarningCount != 0 {
		t.Errorf("WarningCount = %d, want 0 after downgrading the only warning", out.WarningCount)
	}
	if len(out.Messages) != 2 {
		t.Fatalf("Messages length = %d, want 2", len(out.Messages))
	}
	if out.Messages[1].Severity != Info {
		t.Errorf("downgraded message not reflected in JSON: got %v", out.Messages[1].Severity)
	}
}

func TestWriteJSONEmptyMessagesIsEmptyArrayNotNull(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReport().WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.Contains(buf.String(), `"messages": null`) {
		t.Errorf("expected an empty array, not null, for messages: %s", buf.String())
	}
}
