package stackup

import "time"

// Outcome is the terminal state of a bootstrap run.
type Outcome uint8

const (
	OutcomeUnknown Outcome = iota
	OutcomeHealthy         // stack started and the health endpoint answered
	OutcomeDegraded        // stack started but the health check timed out
	OutcomeAborted         // a required resource failed; stack never started
	OutcomeCancelled       // caller interrupt before completion
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHealthy:
		return "healthy"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeAborted:
		return "aborted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String. Unrecognized input maps
// to OutcomeUnknown, matching how old journal rows are read back.
func ParseOutcome(s string) Outcome {
	switch s {
	case "healthy":
		return OutcomeHealthy
	case "degraded":
		return OutcomeDegraded
	case "aborted":
		return OutcomeAborted
	case "cancelled":
		return OutcomeCancelled
	default:
		return OutcomeUnknown
	}
}

// ResourceResult is one line of the bootstrap summary: what happened to a
// single declared resource. Label is human-readable ("directory ./data",
// "volume pgdata"), Status is the resource package's status string.
type ResourceResult struct {
	Label  string
	Status string
	Reason string
}

// Report summarizes a full bootstrap run for the CLI and the journal.
type Report struct {
	Project       string
	StartedAt     time.Time
	Elapsed       time.Duration
	Outcome       Outcome
	EnvFileFound  bool
	EnvParsed     int // lines successfully parsed from the env file
	Resources     []ResourceResult
	StackStarted  bool
	HealthElapsed time.Duration
	Warnings      []string
}

// Failed reports whether the run ended without a started, healthy stack.
// A degraded run still started the stack, so it does not count as failed.
func (r Report) Failed() bool {
	return r.Outcome == OutcomeAborted || r.Outcome == OutcomeCancelled
}
