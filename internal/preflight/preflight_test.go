package preflight

import (
	"strings"
	"testing"
	"time"
)

func TestSkewWarning(t *testing.T) {
	tests := []struct {
		name     string
		offset   time.Duration
		wantWarn bool
	}{
		{"in sync", 120 * time.Millisecond, false},
		{"at threshold", 2 * time.Second, false},
		{"ahead", 5 * time.Second, true},
		{"behind", -3 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := skewWarning(tt.offset)
			if (w != "") != tt.wantWarn {
				t.Fatalf("skewWarning(%s) = %q, wantWarn %v", tt.offset, w, tt.wantWarn)
			}
			if tt.wantWarn && !strings.Contains(w, "clock") {
				t.Fatalf("warning %q should mention the clock", w)
			}
		})
	}
}
