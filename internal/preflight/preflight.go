// Package preflight runs the checks that must pass (or at least be known)
// before resources are touched: Docker daemon reachability, and a
// best-effort clock-skew probe since TLS-terminating stacks misbehave on
// hosts with drifting clocks.
package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/beevik/ntp"
	"github.com/docker/docker/client"
)

const (
	defaultNTPPool   = "pool.ntp.org"
	skewThreshold    = 2 * time.Second
	daemonWaitBudget = 10 * time.Second
)

// Checker runs the preflight sequence.
type Checker struct {
	cli  *client.Client
	pool string
	log  *slog.Logger
}

// New creates a Checker against the given Docker client.
func New(cli *client.Client) *Checker {
	return &Checker{
		cli:  cli,
		pool: defaultNTPPool,
		log:  slog.With("component", "preflight"),
	}
}

// Run returns warnings for soft findings and an error only when the
// daemon is unreachable; nothing downstream works without it.
func (c *Checker) Run(ctx context.Context) ([]string, error) {
	if err := c.waitDaemon(ctx); err != nil {
		return nil, err
	}

	var warnings []string
	if w := c.clockSkewWarning(); w != "" {
		warnings = append(warnings, w)
	}
	return warnings, nil
}

// waitDaemon pings the daemon once a second until it answers or the
// budget runs out. A slow daemon start (Docker Desktop waking up) is
// normal; a hard connection error other than "not yet up" is not.
func (c *Checker) waitDaemon(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, daemonWaitBudget)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	waiting := false
	for {
		_, err := c.cli.Ping(waitCtx)
		if err == nil {
			if waiting {
				c.log.Debug("daemon reachable")
			}
			return nil
		}
		if !client.IsErrConnectionFailed(err) {
			return fmt.Errorf("connect to docker daemon: %w", err)
		}
		if !waiting {
			waiting = true
			c.log.Debug("waiting for docker daemon")
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("docker daemon not reachable: %w", err)
		case <-ticker.C:
		}
	}
}

// clockSkewWarning queries the NTP pool once. Probe failures are expected
// on air-gapped or firewalled hosts and only logged at debug.
func (c *Checker) clockSkewWarning() string {
	resp, err := ntp.Query(c.pool)
	if err != nil {
		c.log.Debug("ntp probe failed", "pool", c.pool, "err", err)
		return ""
	}
	return skewWarning(resp.ClockOffset)
}

func skewWarning(offset time.Duration) string {
	abs := offset
	if abs < 0 {
		abs = -abs
	}
	if abs <= skewThreshold {
		return ""
	}
	return fmt.Sprintf("system clock is %s off NTP time; TLS and token validation in the stack may fail", offset.Round(time.Millisecond))
}
