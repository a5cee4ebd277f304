// Package fake provides in-memory test doubles for the adapter interfaces.
package fake

import (
	"context"
	"io/fs"
	"sync"

	"stackup/internal/resource"
)

var _ resource.Backend = (*Backend)(nil)

type fileState struct {
	Data []byte
	Mode fs.FileMode
}

// Backend is an in-memory resource.Backend: a map of directories and
// files plus a set of named volumes. Error hooks let tests inject
// failures per operation.
type Backend struct {
	CallRecorder
	mu      sync.Mutex
	dirs    map[string]fs.FileMode
	files   map[string]fileState
	volumes map[string]bool

	PathStateErr       func(path string) error
	CreateDirectoryErr func(path string) error
	SetPermissionsErr  func(path string) error
	VolumeExistsErr    func(name string) error
	CreateVolumeErr    func(name string) error
	WriteFileErr       func(path string) error
}

// NewBackend creates an empty Backend.
func NewBackend() *Backend {
	return &Backend{
		dirs:    make(map[string]fs.FileMode),
		files:   make(map[string]fileState),
		volumes: make(map[string]bool),
	}
}

func (b *Backend) PathState(_ context.Context, path string) (resource.PathKind, error) {
	b.record("PathState", path)
	if b.PathStateErr != nil {
		if err := b.PathStateErr(path); err != nil {
			return resource.PathAbsent, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.dirs[path]; ok {
		return resource.PathDirectory, nil
	}
	if _, ok := b.files[path]; ok {
		return resource.PathFile, nil
	}
	return resource.PathAbsent, nil
}

func (b *Backend) CreateDirectory(_ context.Context, path string, mode fs.FileMode) error {
	b.record("CreateDirectory", path, mode)
	if b.CreateDirectoryErr != nil {
		if err := b.CreateDirectoryErr(path); err != nil {
			return err
		}
	}
	b.mu.Lock()
	b.dirs[path] = mode
	b.mu.Unlock()
	return nil
}

func (b *Backend) SetPermissions(_ context.Context, path string, mode fs.FileMode) error {
	b.record("SetPermissions", path, mode)
	if b.SetPermissionsErr != nil {
		if err := b.SetPermissionsErr(path); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.dirs[path]; ok {
		b.dirs[path] = mode
		return nil
	}
	if f, ok := b.files[path]; ok {
		f.Mode = mode
		b.files[path] = f
	}
	return nil
}

func (b *Backend) VolumeExists(_ context.Context, name string) (bool, error) {
	b.record("VolumeExists", name)
	if b.VolumeExistsErr != nil {
		if err := b.VolumeExistsErr(name); err != nil {
			return false, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volumes[name], nil
}

func (b *Backend) CreateVolume(_ context.Context, name string) error {
	b.record("CreateVolume", name)
	if b.CreateVolumeErr != nil {
		if err := b.CreateVolumeErr(name); err != nil {
			return err
		}
	}
	b.mu.Lock()
	b.volumes[name] = true
	b.mu.Unlock()
	return nil
}

func (b *Backend) WriteFile(_ context.Context, path string, data []byte, mode fs.FileMode) error {
	b.record("WriteFile", path, data, mode)
	if b.WriteFileErr != nil {
		if err := b.WriteFileErr(path); err != nil {
			return err
		}
	}
	b.mu.Lock()
	b.files[path] = fileState{Data: append([]byte(nil), data...), Mode: mode}
	b.mu.Unlock()
	return nil
}

// AddFile seeds a plain file, for "path exists as non-directory" cases.
func (b *Backend) AddFile(path string, data []byte, mode fs.FileMode) {
	b.mu.Lock()
	b.files[path] = fileState{Data: append([]byte(nil), data...), Mode: mode}
	b.mu.Unlock()
}

// AddVolume seeds an existing named volume.
func (b *Backend) AddVolume(name string) {
	b.mu.Lock()
	b.volumes[name] = true
	b.mu.Unlock()
}

// DirMode returns the mode of a stored directory and whether it exists.
func (b *Backend) DirMode(path string) (fs.FileMode, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mode, ok := b.dirs[path]
	return mode, ok
}

// File returns the stored content and mode of a file and whether it exists.
func (b *Backend) File(path string) ([]byte, fs.FileMode, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.files[path]
	return f.Data, f.Mode, ok
}
