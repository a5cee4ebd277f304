package bootstrapcmd

import (
	"strings"
	"testing"
	"time"

	"stackup"
)

func TestCmdShape(t *testing.T) {
	manifest := ""
	cmd := Cmd(&manifest)
	if cmd.Use != "bootstrap" {
		t.Fatalf("unexpected use: %q", cmd.Use)
	}

	if err := cmd.Args(cmd, []string{"extra"}); err == nil {
		t.Fatal("expected args validation error for positional args")
	}
}

func TestCmdFlags(t *testing.T) {
	manifest := ""
	cmd := Cmd(&manifest)
	for _, name := range []string{"env-file", "url", "timeout", "interval"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("missing flag %q", name)
		}
	}
}

func TestPrintReportShowsEnvCount(t *testing.T) {
	report := stackup.Report{
		Project:       "demo",
		Outcome:       stackup.OutcomeHealthy,
		EnvFileFound:  true,
		EnvParsed:     4,
		HealthElapsed: 2 * time.Second,
	}

	var sb strings.Builder
	printReport(&sb, report)

	out := sb.String()
	if !strings.Contains(out, "4 entries") {
		t.Fatalf("env entry count missing from output:\n%s", out)
	}
	if !strings.Contains(out, "demo") {
		t.Fatalf("project name missing from output:\n%s", out)
	}
}

func TestPrintReportOmitsEnvLineWithoutFile(t *testing.T) {
	var sb strings.Builder
	printReport(&sb, stackup.Report{Project: "demo", Outcome: stackup.OutcomeAborted})

	if strings.Contains(sb.String(), "Environment:") {
		t.Fatalf("env line printed without an env file:\n%s", sb.String())
	}
}
