package scoring

import (
	"errors"
	"math"
	"testing"

	"traderank/internal/domain"
	"traderank/internal/engineconfig"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := engineconfig.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	return NewEngine(cfg)
}

func TestScore(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{
			name: "reference metrics",
			in: Input{
				ProfitFactor:   2.5,
				WinRatePct:     65.0,
				DrawdownPct:    10.0,
				SharpeRatio:    1.8,
				ConsistencyPct: 75.0,
				RiskPct:        80.0,
			},
			// 50*0.25 + 65*0.20 + 50*0.20 + 54*0.15 + 75*0.15 + 80*0.05
			want: 58.85,
		},
		{
			name: "profit factor capped at 100",
			in: Input{
				ProfitFactor:   10, // 200 before cap
				WinRatePct:     100,
				DrawdownPct:    0,
				SharpeRatio:    5, // 150 before cap
				ConsistencyPct: 100,
				RiskPct:        100,
			},
			want: 100,
		},
		{
			name: "deep drawdown floors at zero",
			in: Input{
				ProfitFactor:   1,
				WinRatePct:     50,
				DrawdownPct:    40, // 100 - 200 -> 0
				SharpeRatio:    1,
				ConsistencyPct: 50,
				RiskPct:        50,
			},
			// 20*0.25 + 50*0.20 + 0*0.20 + 30*0.15 + 50*0.15 + 50*0.05
			want: 29.5,
		},
		{
			name: "all zero",
			in:   Input{},
			// Only the drawdown component contributes: 100*0.20.
			want: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Score(tt.in); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTierBoundaries(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		score float64
		want  domain.Tier
	}{
		{0, domain.TierBronze},
		{19.99, domain.TierBronze},
		{20, domain.TierSilver},
		{39.99, domain.TierSilver},
		{40, domain.TierGold},
		{59.99, domain.TierGold},
		{60, domain.TierPlatinum},
		{79.99, domain.TierPlatinum},
		{80, domain.TierDiamond},
		{94.999, domain.TierDiamond},
		{95, domain.TierElite},
		{100, domain.TierElite},
		{-1, domain.TierBronze},
	}

	for _, tt := range tests {
		if got := e.Tier(tt.score); got != tt.want {
			t.Errorf("Tier(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestScoreAndTier(t *testing.T) {
	e := newTestEngine(t)
	score, tier := e.ScoreAndTier(Input{
		ProfitFactor:   2.5,
		WinRatePct:     65.0,
		DrawdownPct:    10.0,
		SharpeRatio:    1.8,
		ConsistencyPct: 75.0,
		RiskPct:        80.0,
	})
	if score != 58.85 {
		t.Errorf("score = %v, want 58.85", score)
	}
	if tier != domain.TierGold {
		t.Errorf("tier = %v, want GOLD", tier)
	}
}

func TestInputValidate(t *testing.T) {
	good := Input{ProfitFactor: 2.5, WinRatePct: 65, DrawdownPct: 10, SharpeRatio: 1.8, ConsistencyPct: 75, RiskPct: 80}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate on finite input failed: %v", err)
	}

	bad := good
	bad.SharpeRatio = math.NaN()
	if err := bad.Validate(); !errors.Is(err, ErrNotFinite) {
		t.Errorf("Validate(NaN) = %v, want ErrNotFinite", err)
	}

	bad = good
	bad.ProfitFactor = math.Inf(1)
	if err := bad.Validate(); !errors.Is(err, ErrNotFinite) {
		t.Errorf("Validate(+Inf) = %v, want ErrNotFinite", err)
	}
}
