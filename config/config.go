// Package config reads the stack manifest.
//
// The manifest (stackup.yaml next to the compose file, overridable with
// --manifest) declares everything a bootstrap needs: project name, compose
// and env file locations, the resources that must exist before the stack
// starts, and the health endpoint to poll afterwards.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"stackup/internal/health"
	"stackup/internal/resource"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no --manifest flag is given.
const DefaultPath = "stackup.yaml"

const (
	defaultComposeFile    = "compose.yaml"
	defaultEnvFile        = ".env"
	defaultStateDir       = ".stackup"
	defaultHealthTimeout  = 30
	defaultHealthInterval = 2
	defaultDirMode        = "0755"
)

// DirectorySpec declares a host directory resource.
type DirectorySpec struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode,omitempty"` // octal string, defaults to 0755
}

// SecretSpec declares a secret file resource. The file mode is always
// 0600; that invariant is not configurable.
type SecretSpec struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"` // env variable holding the content
}

// Resources groups the declared resource specs.
type Resources struct {
	Directories []DirectorySpec `yaml:"directories,omitempty"`
	Volumes     []string        `yaml:"volumes,omitempty"`
	Secrets     []SecretSpec    `yaml:"secrets,omitempty"`
}

// Health configures the post-start poll.
type Health struct {
	URL             string `yaml:"url"`
	TimeoutSeconds  int    `yaml:"timeout-seconds,omitempty"`
	IntervalSeconds int    `yaml:"interval-seconds,omitempty"`
}

// Config is the parsed manifest.
type Config struct {
	Project     string            `yaml:"project,omitempty"`
	ComposeFile string            `yaml:"compose-file,omitempty"`
	EnvFile     string            `yaml:"env-file,omitempty"`
	StateDir    string            `yaml:"state-dir,omitempty"`
	Defaults    map[string]string `yaml:"defaults,omitempty"` // env defaults table
	Resources   Resources         `yaml:"resources,omitempty"`
	Health      Health            `yaml:"health,omitempty"`
}

// Default returns a manifest with the conventional file locations and
// poll settings filled in.
func Default() *Config {
	return &Config{
		ComposeFile: defaultComposeFile,
		EnvFile:     defaultEnvFile,
		StateDir:    defaultStateDir,
		Health: Health{
			TimeoutSeconds:  defaultHealthTimeout,
			IntervalSeconds: defaultHealthInterval,
		},
	}
}

// Load reads the manifest at path. A missing file yields Default(): a
// compose file in the conventional location needs no manifest at all.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills fields an explicit manifest left empty.
func (c *Config) applyDefaults() {
	if c.ComposeFile == "" {
		c.ComposeFile = defaultComposeFile
	}
	if c.EnvFile == "" {
		c.EnvFile = defaultEnvFile
	}
	if c.StateDir == "" {
		c.StateDir = defaultStateDir
	}
	if c.Health.TimeoutSeconds <= 0 {
		c.Health.TimeoutSeconds = defaultHealthTimeout
	}
	if c.Health.IntervalSeconds <= 0 {
		c.Health.IntervalSeconds = defaultHealthInterval
	}
}

// ResourceSpecs converts the declared resources into ensure specs, in
// manifest order: directories, then volumes, then secrets.
func (c *Config) ResourceSpecs() ([]resource.Spec, error) {
	specs := make([]resource.Spec, 0, len(c.Resources.Directories)+len(c.Resources.Volumes)+len(c.Resources.Secrets))

	for _, d := range c.Resources.Directories {
		mode, err := parseMode(d.Mode)
		if err != nil {
			return nil, fmt.Errorf("directory %q: %w", d.Path, err)
		}
		specs = append(specs, resource.Directory(d.Path, mode))
	}
	for _, name := range c.Resources.Volumes {
		specs = append(specs, resource.NamedVolume(name))
	}
	for _, s := range c.Resources.Secrets {
		specs = append(specs, resource.SecretFile(s.Path, 0o600, s.Source))
	}

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// HealthConfig converts the manifest's health section. A non-empty
// urlOverride (the --url flag) wins over the manifest.
func (c *Config) HealthConfig(urlOverride string) health.Config {
	url := c.Health.URL
	if urlOverride != "" {
		url = urlOverride
	}
	return health.Config{
		URL:      url,
		Timeout:  time.Duration(c.Health.TimeoutSeconds) * time.Second,
		Interval: time.Duration(c.Health.IntervalSeconds) * time.Second,
	}
}

// JournalPath is the run journal location under the state directory.
func (c *Config) JournalPath() string {
	return filepath.Join(c.StateDir, "journal.db")
}

// parseMode reads an octal mode string ("0755"). Modes are declared as
// strings because YAML's integer octal handling is a known footgun.
func parseMode(s string) (fs.FileMode, error) {
	if s == "" {
		s = defaultDirMode
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return fs.FileMode(n), nil
}
