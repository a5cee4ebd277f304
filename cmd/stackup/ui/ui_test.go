package ui

import (
	"strings"
	"testing"
)

func TestStepMsg(t *testing.T) {
	good := StepMsg(true, "volume pgdata", "created")
	if !strings.Contains(good, "volume pgdata") || !strings.Contains(good, "created") {
		t.Errorf("unexpected step line: %q", good)
	}

	bad := StepMsg(false, "directory ./data", "")
	if !strings.Contains(bad, "directory ./data") {
		t.Errorf("unexpected step line: %q", bad)
	}
}

func TestKeyValuesAlignment(t *testing.T) {
	out := KeyValues("", KV("a", "1"), KV("longer", "2"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasSuffix(lines[0], "1") || !strings.HasSuffix(lines[1], "2") {
		t.Errorf("values misplaced: %q", out)
	}
}
