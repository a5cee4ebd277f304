// Package resource declares the resources a stack needs before it starts
// (host directories, named volumes, secret files) and ensures they exist.
// Backend operations are an injected interface so the ensure logic tests
// against an in-memory fake.
package resource

import (
	"fmt"
	"io/fs"
)

// Kind discriminates the Spec variant.
type Kind uint8

const (
	KindDirectory Kind = iota + 1
	KindVolume
	KindSecretFile
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindVolume:
		return "volume"
	case KindSecretFile:
		return "secret"
	default:
		return "unknown"
	}
}

// Spec declares one resource. Use the constructors; a zero Spec is invalid.
type Spec struct {
	Kind Kind

	// Path and Mode apply to directories and secret files.
	Path string
	Mode fs.FileMode

	// Name applies to named volumes.
	Name string

	// SourceVar names the environment variable whose value becomes the
	// secret file content. An absent or empty variable skips the file.
	SourceVar string
}

// Directory declares a host directory created with mode if absent.
func Directory(path string, mode fs.FileMode) Spec {
	return Spec{Kind: KindDirectory, Path: path, Mode: mode}
}

// NamedVolume declares a container volume created if absent.
func NamedVolume(name string) Spec {
	return Spec{Kind: KindVolume, Name: name}
}

// SecretFile declares a credential file rewritten on every run from the
// named environment variable.
func SecretFile(path string, mode fs.FileMode, sourceVar string) Spec {
	return Spec{Kind: KindSecretFile, Path: path, Mode: mode, SourceVar: sourceVar}
}

// Required reports whether a failure on this resource must abort the
// bootstrap. Secret files are optional; everything else is required.
func (s Spec) Required() bool {
	return s.Kind != KindSecretFile
}

// Label returns a short human-readable identifier ("volume pgdata").
func (s Spec) Label() string {
	switch s.Kind {
	case KindVolume:
		return "volume " + s.Name
	case KindSecretFile:
		return "secret " + s.Path
	default:
		return "directory " + s.Path
	}
}

// Validate checks the spec's permission invariants: secret files must be
// owner read/write only, directories must not be group or world writable.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindDirectory:
		if s.Path == "" {
			return fmt.Errorf("directory spec has empty path")
		}
		if s.Mode.Perm()&0o022 != 0 {
			return fmt.Errorf("directory %q mode %#o is group or world writable", s.Path, s.Mode.Perm())
		}
	case KindVolume:
		if s.Name == "" {
			return fmt.Errorf("volume spec has empty name")
		}
	case KindSecretFile:
		if s.Path == "" {
			return fmt.Errorf("secret spec has empty path")
		}
		if s.SourceVar == "" {
			return fmt.Errorf("secret %q has no source variable", s.Path)
		}
		if s.Mode.Perm() != 0o600 {
			return fmt.Errorf("secret %q mode %#o must be 0600", s.Path, s.Mode.Perm())
		}
	default:
		return fmt.Errorf("unknown resource kind %d", s.Kind)
	}
	return nil
}

// Status is the outcome of ensuring one Spec.
type Status uint8

const (
	StatusAlreadyPresent Status = iota + 1
	StatusCreated
	StatusRewritten // secret files are rewritten unconditionally
	StatusSkipped   // secret with absent/empty source variable
	StatusFailed
)

func (st Status) String() string {
	switch st {
	case StatusAlreadyPresent:
		return "already present"
	case StatusCreated:
		return "created"
	case StatusRewritten:
		return "rewritten"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the per-spec ensure result, returned in spec order.
type State struct {
	Spec   Spec
	Status Status
	Reason string // populated when Status is StatusFailed
}

// AnyRequiredFailed reports whether any required resource failed. The
// orchestrator must not start the stack when this is true.
func AnyRequiredFailed(states []State) bool {
	for _, st := range states {
		if st.Status == StatusFailed && st.Spec.Required() {
			return true
		}
	}
	return false
}
