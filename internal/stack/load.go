// Package stack wraps the Docker Compose side of a bootstrap: parsing the
// compose file, running `docker compose` for lifecycle, and reporting
// container status for the project.
package stack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	compose "github.com/compose-spec/compose-go/v2/types"
)

// LoadProject parses a Docker Compose file into a Project. Interpolation
// variables come from envVars (the loaded environment map, never the
// process environment) so behavior is the same regardless of what the
// parent shell exported.
func LoadProject(ctx context.Context, path, name string, envVars map[string]string) (*compose.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compose file: %w", err)
	}

	configDetails := compose.ConfigDetails{
		WorkingDir: filepath.Dir(path),
		ConfigFiles: []compose.ConfigFile{
			{Filename: path, Content: data},
		},
		Environment: envVars,
	}

	var opts []func(*loader.Options)
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		opts = append(opts, func(o *loader.Options) {
			o.SetProjectName(trimmed, true)
		})
	}

	project, err := loader.LoadWithContext(ctx, configDetails, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse compose file: %w", err)
	}
	if len(project.Services) == 0 {
		return nil, fmt.Errorf("compose file has no services")
	}

	return project, nil
}

// ServiceNames returns the project's service names, sorted.
func ServiceNames(project *compose.Project) []string {
	names := make([]string, 0, len(project.Services))
	for name := range project.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
