package stack

import (
	"reflect"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/container"
)

func TestFormatPorts(t *testing.T) {
	ports := []container.Port{
		{PrivatePort: 8811, PublicPort: 9000, IP: "0.0.0.0", Type: "tcp"},
		{PrivatePort: 8811, PublicPort: 9000, IP: "0.0.0.0", Type: "tcp"}, // dupe
		{PrivatePort: 5432, Type: "tcp"},
		{PrivatePort: 443, PublicPort: 443, Type: "tcp"},
	}

	want := []string{
		"0.0.0.0:443->443/tcp",
		"0.0.0.0:9000->8811/tcp",
		"5432/tcp",
	}
	if got := formatPorts(ports); !reflect.DeepEqual(got, want) {
		t.Fatalf("formatPorts() = %v, want %v", got, want)
	}
}

func TestChildEnvOverridesParent(t *testing.T) {
	t.Setenv("STACKUP_TEST_VAR", "parent")

	env := childEnv(map[string]string{"STACKUP_TEST_VAR": "explicit", "ONLY_CHILD": "1"})

	// Later entries win for exec'd processes, so the explicit value must
	// come after the inherited one.
	lastIdx := -1
	for i, kv := range env {
		if strings.HasPrefix(kv, "STACKUP_TEST_VAR=") {
			lastIdx = i
		}
	}
	if lastIdx == -1 || env[lastIdx] != "STACKUP_TEST_VAR=explicit" {
		t.Fatalf("explicit var not last: %q", env[lastIdx])
	}

	found := false
	for _, kv := range env {
		if kv == "ONLY_CHILD=1" {
			found = true
		}
	}
	if !found {
		t.Fatal("ONLY_CHILD missing from child env")
	}
}

func TestDownArgs(t *testing.T) {
	if got := downArgs(false); !reflect.DeepEqual(got, []string{"down", "--remove-orphans"}) {
		t.Fatalf("downArgs(false) = %v", got)
	}
	if got := downArgs(true); !reflect.DeepEqual(got, []string{"down", "--remove-orphans", "--volumes"}) {
		t.Fatalf("downArgs(true) = %v", got)
	}
}

func TestServiceStatusRunning(t *testing.T) {
	if !(ServiceStatus{State: "running"}).Running() {
		t.Fatal("running state should report Running")
	}
	if (ServiceStatus{State: "exited"}).Running() {
		t.Fatal("exited state should not report Running")
	}
}
