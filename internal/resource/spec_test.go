package resource

import "testing"

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"valid directory", Directory("/data", 0o755), false},
		{"group-writable directory", Directory("/data", 0o775), true},
		{"world-writable directory", Directory("/data", 0o757), true},
		{"empty directory path", Directory("", 0o755), true},
		{"valid volume", NamedVolume("pgdata"), false},
		{"empty volume name", NamedVolume(""), true},
		{"valid secret", SecretFile("/run/secrets/db", 0o600, "DB_PASSWORD"), false},
		{"secret too open", SecretFile("/run/secrets/db", 0o644, "DB_PASSWORD"), true},
		{"secret group-readable", SecretFile("/run/secrets/db", 0o640, "DB_PASSWORD"), true},
		{"secret without source", SecretFile("/run/secrets/db", 0o600, ""), true},
		{"zero spec", Spec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpecRequired(t *testing.T) {
	if !Directory("/d", 0o755).Required() {
		t.Fatal("directory should be required")
	}
	if !NamedVolume("v").Required() {
		t.Fatal("volume should be required")
	}
	if SecretFile("/s", 0o600, "VAR").Required() {
		t.Fatal("secret should be optional")
	}
}

func TestAnyRequiredFailed(t *testing.T) {
	states := []State{
		{Spec: Directory("/d", 0o755), Status: StatusCreated},
		{Spec: SecretFile("/s", 0o600, "VAR"), Status: StatusFailed, Reason: "disk full"},
	}
	if AnyRequiredFailed(states) {
		t.Fatal("optional secret failure must not count as required failure")
	}

	states = append(states, State{Spec: NamedVolume("v"), Status: StatusFailed, Reason: "daemon down"})
	if !AnyRequiredFailed(states) {
		t.Fatal("volume failure must count as required failure")
	}
}
