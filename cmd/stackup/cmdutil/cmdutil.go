// Package cmdutil holds helpers shared by the stackup subcommands.
package cmdutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stackup/config"
	"stackup/internal/bootstrap"
)

// Exit codes for scripting callers. Anything else fatal exits 1.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitResource = 2 // a required resource could not be ensured
	ExitHealth   = 3 // the stack started but never answered the health check
)

// ErrHealthTimedOut marks a run whose only problem was the readiness
// poll expiring. Commands wrap it so main can map it to ExitHealth.
var ErrHealthTimedOut = errors.New("health check timed out")

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, bootstrap.ErrResourceFailed):
		return ExitResource
	case errors.Is(err, ErrHealthTimedOut):
		return ExitHealth
	default:
		return ExitFailure
	}
}

// LoadManifest reads the manifest from the --manifest flag value, or the
// default location when the flag is empty. Only the implicit default may
// be absent; a path the user named must exist, so a typo cannot silently
// bootstrap the default stack.
func LoadManifest(flagValue string) (*config.Config, error) {
	path := flagValue
	if path == "" {
		path = config.DefaultPath
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectName resolves the compose project name: the manifest's project
// field, or the working directory's base name, which is the default
// compose itself applies.
func ProjectName(cfg *config.Config) (string, error) {
	if name := strings.TrimSpace(cfg.Project); name != "" {
		return name, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve project name: %w", err)
	}
	return filepath.Base(wd), nil
}
