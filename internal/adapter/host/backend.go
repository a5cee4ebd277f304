// Package host implements resource.Backend against the real machine:
// filesystem calls for directories and secret files, the Docker Engine
// API for named volumes.
package host

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"stackup/internal/resource"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
)

var _ resource.Backend = (*Backend)(nil)

// Backend is the production resource backend.
type Backend struct {
	cli *client.Client
}

// New creates a Backend with a Docker client from the environment
// (DOCKER_HOST et al).
func New() (*Backend, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Backend{cli: cli}, nil
}

// NewFromClient wraps an existing Docker client.
func NewFromClient(cli *client.Client) *Backend {
	return &Backend{cli: cli}
}

// Client returns the underlying Docker client for callers that need
// low-level access (preflight ping, container status).
func (b *Backend) Client() *client.Client {
	return b.cli
}

func (b *Backend) PathState(_ context.Context, path string) (resource.PathKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return resource.PathAbsent, nil
		}
		return resource.PathAbsent, err
	}
	if info.IsDir() {
		return resource.PathDirectory, nil
	}
	return resource.PathFile, nil
}

func (b *Backend) CreateDirectory(_ context.Context, path string, mode fs.FileMode) error {
	// Fail with a clear message when the nearest existing ancestor is not
	// writable, instead of a bare EACCES out of MkdirAll.
	if parent := nearestExisting(path); parent != "" {
		if err := accessWritable(parent); err != nil {
			return fmt.Errorf("parent %q not writable: %w", parent, err)
		}
	}
	return os.MkdirAll(path, mode)
}

func (b *Backend) SetPermissions(_ context.Context, path string, mode fs.FileMode) error {
	return os.Chmod(path, mode)
}

func (b *Backend) VolumeExists(ctx context.Context, name string) (bool, error) {
	_, err := b.cli.VolumeInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *Backend) CreateVolume(ctx context.Context, name string) error {
	_, err := b.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name})
	return err
}

// WriteFile atomically replaces the file at path. The content lands via
// a temp file that already carries mode, then a rename: the target is
// never observable with the new content and an old, looser mode.
func (b *Backend) WriteFile(_ context.Context, path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// nearestExisting walks up from path to the closest ancestor that exists.
func nearestExisting(path string) string {
	dir := filepath.Dir(filepath.Clean(path))
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
