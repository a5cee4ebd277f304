package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{URL: "http://x/health", Timeout: 30 * time.Second, Interval: 2 * time.Second}, false},
		{"empty url", Config{Timeout: time.Second, Interval: time.Second}, true},
		{"zero interval", Config{URL: "http://x", Timeout: time.Second}, true},
		{"interval exceeds timeout", Config{URL: "http://x", Timeout: time.Second, Interval: 2 * time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPoll_ImmediateSuccessSkipsInterval(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	interval := 500 * time.Millisecond
	res, err := New().Poll(context.Background(), Config{
		URL:      srv.URL,
		Timeout:  5 * time.Second,
		Interval: interval,
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !res.Healthy {
		t.Fatal("Healthy = false, want true")
	}
	if res.Elapsed >= interval {
		t.Fatalf("Elapsed = %s, want < one interval (%s)", res.Elapsed, interval)
	}
}

func TestPoll_EventualSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res, err := New().Poll(context.Background(), Config{
		URL:      srv.URL,
		Timeout:  5 * time.Second,
		Interval: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !res.Healthy {
		t.Fatal("Healthy = false, want true")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("probe count = %d, want 3", got)
	}
}

func TestPoll_TimeoutBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	timeout := 300 * time.Millisecond
	interval := 100 * time.Millisecond
	res, err := New().Poll(context.Background(), Config{
		URL:      srv.URL,
		Timeout:  timeout,
		Interval: interval,
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if res.Healthy {
		t.Fatal("Healthy = true, want false")
	}
	if res.Elapsed < timeout {
		t.Fatalf("Elapsed = %s, want >= timeout %s", res.Elapsed, timeout)
	}
	if res.Elapsed > timeout+interval+100*time.Millisecond {
		t.Fatalf("Elapsed = %s, want within one interval of timeout %s", res.Elapsed, timeout)
	}
}

func TestPoll_ConnectionRefusedRetries(t *testing.T) {
	// Reserve a port that nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	res, err := New().Poll(context.Background(), Config{
		URL:      url,
		Timeout:  200 * time.Millisecond,
		Interval: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if res.Healthy {
		t.Fatal("Healthy = true, want false")
	}
}

func TestPoll_CancellationAbortsPromptly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(80 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := New().Poll(ctx, Config{
		URL:      srv.URL,
		Timeout:  10 * time.Second,
		Interval: 200 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("Poll() error = nil, want context.Canceled")
	}
	if waited := time.Since(start); waited > time.Second {
		t.Fatalf("cancellation took %s, want within one interval", waited)
	}
}
