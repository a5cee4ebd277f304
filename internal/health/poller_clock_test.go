package health_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stackup/internal/adapter/fake"
	"stackup/internal/health"
)

func TestPollElapsedUsesInjectedClock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// The injected clock governs accounting only; the endpoint answers on
	// the first probe, so the real ticker never has to fire.
	clock := fake.NewClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	p := health.New(health.WithClock(clock))

	res, err := p.Poll(context.Background(), health.Config{
		URL:      srv.URL,
		Timeout:  time.Second,
		Interval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if !res.Healthy {
		t.Fatal("expected healthy result")
	}
	// The clock never advances, so elapsed must be exactly zero.
	if res.Elapsed != 0 {
		t.Fatalf("expected zero elapsed from frozen clock, got %s", res.Elapsed)
	}
}
