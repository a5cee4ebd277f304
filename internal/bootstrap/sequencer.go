// Package bootstrap sequences a full stack bring-up: environment load,
// preflight, resource ensure, compose up, health poll. Each stage feeds
// the next explicitly; there is no process-global state between them.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stackup"
	"stackup/config"
	"stackup/internal/check"
	"stackup/internal/env"
	"stackup/internal/health"
	"stackup/internal/resource"
	"stackup/internal/stack"
)

// ErrResourceFailed is returned when a required directory or volume could
// not be ensured. The stack is never started in that case.
var ErrResourceFailed = errors.New("required resource failed")

// Starter launches the stack once resources exist. envVars is the loaded
// environment map, passed through for compose interpolation.
type Starter interface {
	StartStack(ctx context.Context, envVars map[string]string) error
}

// Poller runs the post-start health check.
type Poller interface {
	Poll(ctx context.Context, cfg health.Config) (health.Result, error)
}

// Recorder persists the run report. Journal recording is best-effort;
// failures are logged, never fatal.
type Recorder interface {
	Record(ctx context.Context, report stackup.Report) error
}

// PreflightFunc runs environment checks before any resource is touched,
// returning warnings, or an error to abort.
type PreflightFunc func(ctx context.Context) ([]string, error)

// Sequencer wires the bootstrap stages together.
type Sequencer struct {
	Manifest  *config.Config
	Project   string // resolved project name, never empty
	Backend   resource.Backend
	Starter   Starter
	Poller    Poller
	Recorder  Recorder      // optional
	Preflight PreflightFunc // optional

	HealthURL string // --url override, may be empty

	log *slog.Logger
}

// Run executes the sequence and returns a report alongside any fatal
// error. The report is meaningful even on error: it carries whatever
// progress was made so the CLI can print a partial summary.
func (s *Sequencer) Run(ctx context.Context) (stackup.Report, error) {
	if s.log == nil {
		s.log = slog.With("component", "bootstrap")
	}
	report := stackup.Report{
		Project:   s.Project,
		StartedAt: time.Now(),
	}

	// Stage 1: environment. A missing file is fine, an unreadable one
	// is not.
	envMap, envRes, err := env.Load(s.Manifest.EnvFile, s.Manifest.Defaults)
	if err != nil {
		report.Outcome = stackup.OutcomeAborted
		return s.finish(ctx, report), err
	}
	report.EnvFileFound = envRes.FileFound
	report.EnvParsed = envRes.ParsedLines
	if !envRes.FileFound && s.Manifest.EnvFile != "" {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("env file %s not found; using built-in defaults", s.Manifest.EnvFile))
	}

	// Stage 2: preflight.
	if s.Preflight != nil {
		warnings, err := s.Preflight(ctx)
		report.Warnings = append(report.Warnings, warnings...)
		if err != nil {
			report.Outcome = stackup.OutcomeAborted
			return s.finish(ctx, report), err
		}
	}

	// Stage 3: resources.
	specs, err := s.Manifest.ResourceSpecs()
	if err != nil {
		report.Outcome = stackup.OutcomeAborted
		return s.finish(ctx, report), err
	}
	ensurer := resource.NewEnsurer(s.Backend, envMap.Lookup)
	states, err := ensurer.Ensure(ctx, specs)
	check.Assert(err != nil || len(states) == len(specs), "ensure returned fewer states than specs without an error")
	for _, st := range states {
		report.Resources = append(report.Resources, stackup.ResourceResult{
			Label:  st.Spec.Label(),
			Status: st.Status.String(),
			Reason: st.Reason,
		})
		if st.Status == resource.StatusFailed && !st.Spec.Required() {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s: %s (optional, continuing)", st.Spec.Label(), st.Reason))
		}
	}
	if err != nil {
		report.Outcome = stackup.OutcomeCancelled
		return s.finish(ctx, report), err
	}
	if resource.AnyRequiredFailed(states) {
		report.Outcome = stackup.OutcomeAborted
		return s.finish(ctx, report), ErrResourceFailed
	}

	// Stage 4: validate the compose file before handing it to the
	// compose CLI, so a broken file fails here with a parse error
	// rather than mid-startup.
	if _, err := stack.LoadProject(ctx, s.Manifest.ComposeFile, s.Project, envMap.Values()); err != nil {
		report.Outcome = stackup.OutcomeAborted
		return s.finish(ctx, report), err
	}

	// Stage 5: start the stack. Everything container-side is compose's
	// job from here.
	if err := s.Starter.StartStack(ctx, envMap.Values()); err != nil {
		report.Outcome = stackup.OutcomeAborted
		return s.finish(ctx, report), fmt.Errorf("start stack: %w", err)
	}
	report.StackStarted = true

	// Stage 6: health.
	healthCfg := s.Manifest.HealthConfig(s.HealthURL)
	if healthCfg.URL == "" {
		report.Warnings = append(report.Warnings, "no health endpoint configured; skipping readiness poll")
		report.Outcome = stackup.OutcomeHealthy
		return s.finish(ctx, report), nil
	}

	result, err := s.Poller.Poll(ctx, healthCfg)
	report.HealthElapsed = result.Elapsed
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		report.Outcome = stackup.OutcomeCancelled
		return s.finish(ctx, report), err
	case err != nil:
		report.Outcome = stackup.OutcomeAborted
		return s.finish(ctx, report), err
	case result.Healthy:
		report.Outcome = stackup.OutcomeHealthy
	default:
		report.Outcome = stackup.OutcomeDegraded
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"health endpoint %s did not answer within %s; the stack may need more time: re-run `stackup health` and check container logs",
			healthCfg.URL, healthCfg.Timeout))
	}
	return s.finish(ctx, report), nil
}

// finish stamps elapsed time and records the run. Recording failures are
// logged and swallowed: history must never break a bootstrap.
func (s *Sequencer) finish(ctx context.Context, report stackup.Report) stackup.Report {
	report.Elapsed = time.Since(report.StartedAt)
	if s.Recorder != nil {
		// Use a fresh context so a cancelled run still gets journaled.
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.Recorder.Record(recordCtx, report); err != nil {
			s.log.Warn("journal record failed", "err", err)
		}
	}
	return report
}
