package historycmd

import "testing"

func TestCmdShape(t *testing.T) {
	manifest := ""
	cmd := Cmd(&manifest)
	if cmd.Use != "history" {
		t.Fatalf("unexpected use: %q", cmd.Use)
	}

	limit := cmd.Flags().Lookup("limit")
	if limit == nil {
		t.Fatal("missing flag \"limit\"")
	}
	if limit.DefValue != "10" {
		t.Fatalf("unexpected default limit: %q", limit.DefValue)
	}
}
