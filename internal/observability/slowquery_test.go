package observability

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSlowQueryDetector_ClassifySeverity(t *testing.T) {
	sqd := NewSlowQueryDetector(200*time.Millisecond, 500*time.Millisecond, zap.NewNop())

	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"fast", 50 * time.Millisecond, "normal"},
		{"at warning threshold", 200 * time.Millisecond, "normal"},
		{"warning", 300 * time.Millisecond, "warning"},
		{"at critical threshold", 500 * time.Millisecond, "warning"},
		{"critical", 700 * time.Millisecond, "critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sqd.classifySeverity(tt.duration); got != tt.want {
				t.Errorf("classifySeverity(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestSlowQueryDetector_FastQueryNoop(t *testing.T) {
	sqd := NewSlowQueryDetector(200*time.Millisecond, 500*time.Millisecond, zap.NewNop())
	// Must not panic or block for fast queries.
	sqd.Intercept(context.Background(), "BDM_142411", "product_code", 10*time.Millisecond, 100, 5)
}

func TestHashTermForLog_Deterministic(t *testing.T) {
	h1 := hashTermForLog("BDM_142411")
	h2 := hashTermForLog("BDM_142411")
	if h1 != h2 {
		t.Errorf("hash not deterministic: %q != %q", h1, h2)
	}
	if h1 == hashTermForLog("BDM_142412") {
		t.Error("different terms should hash differently")
	}
	if len(h1) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(h1))
	}
}
