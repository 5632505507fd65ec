package progress

import (
	"testing"

	"traderank/internal/engineconfig"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := engineconfig.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	return NewEngine(cfg.Progress)
}

func TestCompute(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name       string
		payout     float64
		days       int
		wantPoints int
		wantNext   int
	}{
		{"no payout no days floors at minimum", 0, 0, 25, 75},
		{"day points only", 0, 10, 25, 75}, // 20 -> floored to 25
		{"payout only", 80, 0, 80, 85},
		{"payout plus days", 80, 5, 90, 92},
		{"day points capped", 80, 60, 125, 100}, // 120 days' worth capped at 45
		{"uncapped total above 100", 95, 60, 140, 100},
		{"exactly on threshold unlocks it", 88, 0, 88, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Compute(tt.payout, tt.days)
			if got.CurrentPoints != tt.wantPoints {
				t.Errorf("points = %d, want %d", got.CurrentPoints, tt.wantPoints)
			}
			if got.NextRewardThreshold != tt.wantNext {
				t.Errorf("next threshold = %d, want %d", got.NextRewardThreshold, tt.wantNext)
			}
		})
	}
}

func TestComputeTargets(t *testing.T) {
	e := newTestEngine(t)
	state := e.Compute(80, 5) // 90 points

	if len(state.Targets) != 10 {
		t.Fatalf("targets = %d, want 10", len(state.Targets))
	}
	for i, target := range state.Targets {
		if target.ID != i+1 {
			t.Errorf("target %d: ID = %d, want %d", i, target.ID, i+1)
		}
		wantUnlocked := state.CurrentPoints >= target.RequiredPoints
		if target.Unlocked != wantUnlocked {
			t.Errorf("target %d (requires %d): unlocked = %v, want %v",
				target.ID, target.RequiredPoints, target.Unlocked, wantUnlocked)
		}
	}

	// 90 points: thresholds 0..90 unlocked, 92 is next.
	if !state.Targets[5].Unlocked {
		t.Error("threshold 90 should be unlocked at 90 points")
	}
	if state.Targets[6].Unlocked {
		t.Error("threshold 92 should be locked at 90 points")
	}
}

func TestComputeAllUnlocked(t *testing.T) {
	e := newTestEngine(t)
	state := e.Compute(95, 60) // 140 points

	for _, target := range state.Targets {
		if !target.Unlocked {
			t.Errorf("target %d locked at %d points", target.ID, state.CurrentPoints)
		}
	}
	if state.NextRewardThreshold != 100 {
		t.Errorf("next threshold = %d, want 100 when everything is unlocked", state.NextRewardThreshold)
	}
}
