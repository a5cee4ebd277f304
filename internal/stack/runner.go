package stack

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
)

// ComposeCLI runs `docker compose` as a child process. Compose owns
// image pulls, container creation, dependency ordering and networks;
// this tool only sequences around it.
type ComposeCLI struct {
	ComposeFile string
	Project     string
	Env         map[string]string // explicit variables for interpolation
	Stdout      io.Writer
	Stderr      io.Writer

	log *slog.Logger
}

// NewComposeCLI creates a runner for the given compose file and project
// name. Output streams default to the parent's stdout/stderr.
func NewComposeCLI(composeFile, project string, envVars map[string]string) *ComposeCLI {
	return &ComposeCLI{
		ComposeFile: composeFile,
		Project:     project,
		Env:         envVars,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		log:         slog.With("component", "compose"),
	}
}

func (c *ComposeCLI) Up(ctx context.Context) error {
	return c.run(ctx, "up", "-d", "--remove-orphans")
}

func (c *ComposeCLI) Down(ctx context.Context, removeVolumes bool) error {
	return c.run(ctx, downArgs(removeVolumes)...)
}

func downArgs(removeVolumes bool) []string {
	args := []string{"down", "--remove-orphans"}
	if removeVolumes {
		args = append(args, "--volumes")
	}
	return args
}

func (c *ComposeCLI) run(ctx context.Context, args ...string) error {
	full := append([]string{"compose", "-f", c.ComposeFile, "-p", c.Project}, args...)
	cmd := exec.CommandContext(ctx, "docker", full...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.Env = childEnv(c.Env)

	c.log.Debug("running compose", "args", args)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker compose %s: %w", args[0], err)
	}
	return nil
}

// childEnv layers the explicit variables over the parent environment.
// Compose still needs PATH, HOME and DOCKER_* from the parent; the loaded
// map wins on conflicts.
func childEnv(vars map[string]string) []string {
	env := os.Environ()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		env = append(env, name+"="+vars[name])
	}
	return env
}
