package resource_test

import (
	"context"
	"errors"
	"testing"

	"stackup/internal/adapter/fake"
	"stackup/internal/resource"
)

func secretsFrom(m map[string]string) resource.SecretSource {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestEnsure_CreatesThenReportsAlreadyPresent(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	ensurer := resource.NewEnsurer(backend, nil)
	specs := []resource.Spec{
		resource.Directory("/srv/stack/data", 0o755),
		resource.NamedVolume("pgdata"),
	}

	states, err := ensurer.Ensure(ctx, specs)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	for i, st := range states {
		if st.Status != resource.StatusCreated {
			t.Fatalf("states[%d].Status = %v, want created", i, st.Status)
		}
	}
	if mode, ok := backend.DirMode("/srv/stack/data"); !ok || mode != 0o755 {
		t.Fatalf("directory mode = %v (present=%v), want 0755", mode, ok)
	}

	// Second run: same final state, AlreadyPresent across the board.
	states, err = ensurer.Ensure(ctx, specs)
	if err != nil {
		t.Fatalf("Ensure() second run error = %v", err)
	}
	for i, st := range states {
		if st.Status != resource.StatusAlreadyPresent {
			t.Fatalf("states[%d].Status = %v, want already present", i, st.Status)
		}
	}
	if n := backend.CallCount("CreateDirectory"); n != 1 {
		t.Fatalf("CreateDirectory calls = %d, want 1", n)
	}
	if n := backend.CallCount("CreateVolume"); n != 1 {
		t.Fatalf("CreateVolume calls = %d, want 1", n)
	}
}

func TestEnsure_PathExistsAsFileFails(t *testing.T) {
	backend := fake.NewBackend()
	backend.AddFile("/srv/stack/data", []byte("not a directory"), 0o644)
	ensurer := resource.NewEnsurer(backend, nil)

	states, err := ensurer.Ensure(context.Background(), []resource.Spec{
		resource.Directory("/srv/stack/data", 0o755),
		resource.NamedVolume("pgdata"),
	})
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if states[0].Status != resource.StatusFailed {
		t.Fatalf("states[0].Status = %v, want failed", states[0].Status)
	}
	// Sibling resources still processed after a failure.
	if states[1].Status != resource.StatusCreated {
		t.Fatalf("states[1].Status = %v, want created", states[1].Status)
	}
}

func TestEnsure_SecretSkippedWhenSourceEmpty(t *testing.T) {
	backend := fake.NewBackend()
	ensurer := resource.NewEnsurer(backend, secretsFrom(map[string]string{"EMPTY": ""}))

	states, err := ensurer.Ensure(context.Background(), []resource.Spec{
		resource.SecretFile("/run/secrets/a", 0o600, "ABSENT"),
		resource.SecretFile("/run/secrets/b", 0o600, "EMPTY"),
	})
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	for i, st := range states {
		if st.Status != resource.StatusSkipped {
			t.Fatalf("states[%d].Status = %v, want skipped", i, st.Status)
		}
	}
	if _, _, ok := backend.File("/run/secrets/a"); ok {
		t.Fatal("skipped secret must not produce a file")
	}
}

func TestEnsure_SecretAlwaysRewritten(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	backend.AddFile("/run/secrets/db", []byte("stale"), 0o644)
	ensurer := resource.NewEnsurer(backend, secretsFrom(map[string]string{"DB_PASSWORD": "s3cret"}))
	specs := []resource.Spec{resource.SecretFile("/run/secrets/db", 0o600, "DB_PASSWORD")}

	for run := 0; run < 2; run++ {
		states, err := ensurer.Ensure(ctx, specs)
		if err != nil {
			t.Fatalf("Ensure() run %d error = %v", run, err)
		}
		if states[0].Status != resource.StatusRewritten {
			t.Fatalf("run %d status = %v, want rewritten", run, states[0].Status)
		}
	}

	data, mode, ok := backend.File("/run/secrets/db")
	if !ok {
		t.Fatal("secret file missing")
	}
	if string(data) != "s3cret" {
		t.Fatalf("secret content = %q, want %q", data, "s3cret")
	}
	if mode != 0o600 {
		t.Fatalf("secret mode = %v, want 0600", mode)
	}
}

func TestEnsure_BackendErrorRecordedAsFailed(t *testing.T) {
	backend := fake.NewBackend()
	backend.CreateVolumeErr = func(string) error { return errors.New("daemon unavailable") }
	ensurer := resource.NewEnsurer(backend, nil)

	states, err := ensurer.Ensure(context.Background(), []resource.Spec{resource.NamedVolume("pgdata")})
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if states[0].Status != resource.StatusFailed {
		t.Fatalf("status = %v, want failed", states[0].Status)
	}
	if states[0].Reason == "" {
		t.Fatal("failed state must carry a reason")
	}
}

func TestEnsure_InvalidSpecFailsWithoutBackendCalls(t *testing.T) {
	backend := fake.NewBackend()
	ensurer := resource.NewEnsurer(backend, nil)

	states, err := ensurer.Ensure(context.Background(), []resource.Spec{
		resource.SecretFile("/run/secrets/db", 0o644, "DB_PASSWORD"),
	})
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if states[0].Status != resource.StatusFailed {
		t.Fatalf("status = %v, want failed", states[0].Status)
	}
	if calls := backend.Calls(""); len(calls) != 0 {
		t.Fatalf("backend calls = %v, want none", calls)
	}
}

func TestEnsure_CancellationReturnsPartialStates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := fake.NewBackend()
	backend.CreateVolumeErr = func(string) error {
		cancel() // cancel mid-sequence, after the first spec ran
		return nil
	}
	ensurer := resource.NewEnsurer(backend, nil)

	states, err := ensurer.Ensure(ctx, []resource.Spec{
		resource.NamedVolume("first"),
		resource.NamedVolume("second"),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Ensure() error = %v, want context.Canceled", err)
	}
	if len(states) != 1 {
		t.Fatalf("len(states) = %d, want 1 partial state", len(states))
	}
}
