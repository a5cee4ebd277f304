// Package health polls an HTTP endpoint until it answers or a deadline
// passes. Used once during bootstrap and standalone as a diagnostic.
package health

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Clock abstracts time.Now() for deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// maxRequestTimeout caps the per-request timeout so a hanging endpoint
// cannot eat more than one poll interval.
const maxRequestTimeout = 5 * time.Second

// Config describes one poll session.
type Config struct {
	URL      string
	Timeout  time.Duration // overall deadline for the session
	Interval time.Duration // fixed delay between attempts, no backoff
}

// Validate checks the bounded-termination invariants.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("health check URL is empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Interval)
	}
	if c.Interval > c.Timeout {
		return fmt.Errorf("poll interval %s exceeds timeout %s", c.Interval, c.Timeout)
	}
	return nil
}

// Result is the terminal state of a poll session.
type Result struct {
	Healthy bool
	Elapsed time.Duration
}

// Poller issues the HTTP probes. The zero value is not usable; call New.
type Poller struct {
	client *http.Client
	clock  Clock
	log    *slog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithClient overrides the HTTP client (tests, custom transports).
func WithClient(c *http.Client) Option {
	return func(p *Poller) { p.client = c }
}

// WithClock overrides the clock used for elapsed-time accounting only.
// Sleeping between attempts and deadline checks ride a real time.Ticker,
// so a frozen clock does not bound a session against an unhealthy
// endpoint; pair a fake clock with a short real Timeout.
func WithClock(c Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// New creates a Poller.
func New(opts ...Option) *Poller {
	p := &Poller{
		client: &http.Client{},
		clock:  RealClock{},
		log:    slog.With("component", "health"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll probes cfg.URL until a 2xx response or cfg.Timeout elapses. A 2xx
// returns immediately; anything else (refused connection, non-2xx,
// per-request timeout) waits one interval and retries. The error return
// is non-nil only for an invalid config or caller cancellation, which
// aborts within one interval.
func (p *Poller) Poll(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	reqTimeout := cfg.Interval
	if reqTimeout > maxRequestTimeout {
		reqTimeout = maxRequestTimeout
	}

	start := p.clock.Now()
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		if p.probe(ctx, cfg.URL, reqTimeout, attempt) {
			return Result{Healthy: true, Elapsed: p.clock.Now().Sub(start)}, nil
		}

		select {
		case <-ctx.Done():
			return Result{Elapsed: p.clock.Now().Sub(start)}, ctx.Err()
		case <-ticker.C:
		}

		if elapsed := p.clock.Now().Sub(start); elapsed >= cfg.Timeout {
			return Result{Elapsed: elapsed}, nil
		}
	}
}

func (p *Poller) probe(ctx context.Context, url string, timeout time.Duration, attempt int) bool {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		p.log.Debug("probe request invalid", "url", url, "err", err)
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debug("probe failed", "url", url, "attempt", attempt, "err", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		p.log.Debug("probe unhealthy", "url", url, "attempt", attempt, "status", resp.StatusCode)
	}
	return ok
}
