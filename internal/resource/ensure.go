package resource

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
)

// PathKind is what the backend found at a filesystem path.
type PathKind uint8

const (
	PathAbsent PathKind = iota
	PathDirectory
	PathFile
)

// Backend is the external capability set the ensurer drives: filesystem
// operations for directories and secret files, the container runtime's
// volume API for named volumes.
type Backend interface {
	PathState(ctx context.Context, path string) (PathKind, error)
	CreateDirectory(ctx context.Context, path string, mode fs.FileMode) error
	SetPermissions(ctx context.Context, path string, mode fs.FileMode) error
	VolumeExists(ctx context.Context, name string) (bool, error)
	CreateVolume(ctx context.Context, name string) error
	// WriteFile atomically replaces the file at path with data and mode.
	// Implementations must never leave the new content readable under a
	// preexisting, looser mode.
	WriteFile(ctx context.Context, path string, data []byte, mode fs.FileMode) error
}

// SecretSource resolves a secret's source variable. env.Map.Lookup
// satisfies this.
type SecretSource func(name string) (string, bool)

// Ensurer makes declared resources exist, in order, idempotently.
type Ensurer struct {
	backend Backend
	secrets SecretSource
	log     *slog.Logger
}

// NewEnsurer creates an Ensurer. secrets may be nil when no SecretFile
// specs will be processed.
func NewEnsurer(backend Backend, secrets SecretSource) *Ensurer {
	return &Ensurer{
		backend: backend,
		secrets: secrets,
		log:     slog.With("component", "resource"),
	}
}

// Ensure processes specs strictly in order and returns one State per spec,
// same order. A failed spec is recorded and processing continues; only
// context cancellation stops early, returning the partial states alongside
// the context error so the caller can report progress made.
func (e *Ensurer) Ensure(ctx context.Context, specs []Spec) ([]State, error) {
	states := make([]State, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return states, err
		}
		states = append(states, e.ensureOne(ctx, spec))
	}
	return states, nil
}

func (e *Ensurer) ensureOne(ctx context.Context, spec Spec) State {
	if err := spec.Validate(); err != nil {
		return failed(spec, err)
	}

	var st State
	switch spec.Kind {
	case KindDirectory:
		st = e.ensureDirectory(ctx, spec)
	case KindVolume:
		st = e.ensureVolume(ctx, spec)
	case KindSecretFile:
		st = e.ensureSecret(ctx, spec)
	}

	if st.Status == StatusFailed {
		e.log.Warn("resource failed", "resource", spec.Label(), "reason", st.Reason)
	} else {
		e.log.Debug("resource ensured", "resource", spec.Label(), "status", st.Status.String())
	}
	return st
}

func (e *Ensurer) ensureDirectory(ctx context.Context, spec Spec) State {
	kind, err := e.backend.PathState(ctx, spec.Path)
	if err != nil {
		return failed(spec, fmt.Errorf("stat %q: %w", spec.Path, err))
	}
	switch kind {
	case PathDirectory:
		return State{Spec: spec, Status: StatusAlreadyPresent}
	case PathFile:
		return failed(spec, fmt.Errorf("%q exists and is not a directory", spec.Path))
	}

	if err := e.backend.CreateDirectory(ctx, spec.Path, spec.Mode); err != nil {
		return failed(spec, fmt.Errorf("create %q: %w", spec.Path, err))
	}
	// MkdirAll honors the umask, so apply the declared mode explicitly.
	if err := e.backend.SetPermissions(ctx, spec.Path, spec.Mode); err != nil {
		return failed(spec, fmt.Errorf("chmod %q: %w", spec.Path, err))
	}
	return State{Spec: spec, Status: StatusCreated}
}

func (e *Ensurer) ensureVolume(ctx context.Context, spec Spec) State {
	exists, err := e.backend.VolumeExists(ctx, spec.Name)
	if err != nil {
		return failed(spec, fmt.Errorf("inspect volume %q: %w", spec.Name, err))
	}
	if exists {
		return State{Spec: spec, Status: StatusAlreadyPresent}
	}
	if err := e.backend.CreateVolume(ctx, spec.Name); err != nil {
		return failed(spec, fmt.Errorf("create volume %q: %w", spec.Name, err))
	}
	return State{Spec: spec, Status: StatusCreated}
}

// ensureSecret rewrites the file on every run so its content always
// reflects the current environment. An absent or empty source variable
// skips the file entirely.
func (e *Ensurer) ensureSecret(ctx context.Context, spec Spec) State {
	var value string
	if e.secrets != nil {
		value, _ = e.secrets(spec.SourceVar)
	}
	if value == "" {
		return State{Spec: spec, Status: StatusSkipped}
	}

	// WriteFile replaces content and mode in one step; a preexisting
	// looser file must never hold the fresh value.
	if err := e.backend.WriteFile(ctx, spec.Path, []byte(value), spec.Mode); err != nil {
		return failed(spec, fmt.Errorf("write %q: %w", spec.Path, err))
	}
	return State{Spec: spec, Status: StatusRewritten}
}

func failed(spec Spec, err error) State {
	return State{Spec: spec, Status: StatusFailed, Reason: err.Error()}
}
