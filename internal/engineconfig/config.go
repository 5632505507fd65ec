// Package engineconfig holds the tunable parameters of the scoring, payout,
// and progress engines. Defaults match the production values; a YAML file
// can override any of them. Invalid overrides are a startup failure, never
// a silent fallback.
package engineconfig

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"traderank/internal/domain"
)

// Weights are the six score component weights. They must sum to 1.
type Weights struct {
	ProfitFactor float64 `yaml:"profit_factor"`
	WinRate      float64 `yaml:"win_rate"`
	Drawdown     float64 `yaml:"drawdown"`
	Sharpe       float64 `yaml:"sharpe"`
	Consistency  float64 `yaml:"consistency"`
	Risk         float64 `yaml:"risk"`
}

// TierBand maps a minimum score to a ranking tier. Bands are evaluated
// highest-first; the first band whose MinScore the score meets wins.
type TierBand struct {
	Tier     domain.Tier `yaml:"tier"`
	MinScore float64     `yaml:"min_score"`
}

// PayoutBand is the YAML shape of one payout band. MaxAverage < 0 means
// unbounded.
type PayoutBand struct {
	MinAverage    float64            `yaml:"min_average"`
	MaxAverage    float64            `yaml:"max_average"`
	PayoutPercent float64            `yaml:"payout_percent"`
	Level         domain.PayoutLevel `yaml:"level"`
	Color         string             `yaml:"color"`
	Description   string             `yaml:"description"`
}

// Progress holds the gamification point parameters.
type Progress struct {
	Thresholds    []int `yaml:"thresholds"`
	MinimumPoints int   `yaml:"minimum_points"`
	PointsPerDay  int   `yaml:"points_per_day"`
	DayPointsCap  int   `yaml:"day_points_cap"`
}

// Config is the full engine parameter set.
type Config struct {
	Weights     Weights      `yaml:"weights"`
	TierBands   []TierBand   `yaml:"tier_bands"`
	PayoutBands []PayoutBand `yaml:"payout_bands"`
	Progress    Progress     `yaml:"progress"`
}

// Default returns the production parameter set.
func Default() *Config {
	return &Config{
		Weights: Weights{
			ProfitFactor: 0.25,
			WinRate:      0.20,
			Drawdown:     0.20,
			Sharpe:       0.15,
			Consistency:  0.15,
			Risk:         0.05,
		},
		TierBands: []TierBand{
			{Tier: domain.TierElite, MinScore: 95},
			{Tier: domain.TierDiamond, MinScore: 80},
			{Tier: domain.TierPlatinum, MinScore: 60},
			{Tier: domain.TierGold, MinScore: 40},
			{Tier: domain.TierSilver, MinScore: 20},
			{Tier: domain.TierBronze, MinScore: 0},
		},
		PayoutBands: []PayoutBand{
			{
				MinAverage:    0,
				MaxAverage:    0.20,
				PayoutPercent: 95,
				Level:         domain.PayoutLevelGold,
				Color:         "#FBBF24",
				Description:   "Low trading frequency - highest payout rate",
			},
			{
				MinAverage:    0.20,
				MaxAverage:    0.40,
				PayoutPercent: 80,
				Level:         domain.PayoutLevelSilver,
				Color:         "#F59E0B",
				Description:   "Moderate trading frequency - standard payout rate",
			},
			{
				MinAverage:    0.40,
				MaxAverage:    -1,
				PayoutPercent: 30,
				Level:         domain.PayoutLevelBronze,
				Color:         "#10B981",
				Description:   "High trading frequency - reduced payout rate",
			},
		},
		Progress: Progress{
			Thresholds:    []int{0, 75, 80, 85, 88, 90, 92, 94, 96, 98},
			MinimumPoints: 25,
			PointsPerDay:  2,
			DayPointsCap:  45,
		},
	}
}

// Load returns the default config, overridden by the YAML file at path when
// path is non-empty. The result is always validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read engine config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse engine config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate engine config: %w", err)
	}
	return cfg, nil
}

// Validate checks internal consistency of the parameter set.
func (c *Config) Validate() error {
	w := c.Weights
	sum := w.ProfitFactor + w.WinRate + w.Drawdown + w.Sharpe + w.Consistency + w.Risk
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("score weights sum to %v, want 1.0", sum)
	}

	if len(c.TierBands) == 0 {
		return fmt.Errorf("no tier bands configured")
	}
	for i, b := range c.TierBands {
		if !b.Tier.Valid() {
			return fmt.Errorf("tier band %d: unknown tier %q", i, b.Tier)
		}
		if i > 0 && b.MinScore >= c.TierBands[i-1].MinScore {
			return fmt.Errorf("tier bands must be in descending min_score order")
		}
	}
	if last := c.TierBands[len(c.TierBands)-1]; last.MinScore != 0 {
		return fmt.Errorf("lowest tier band must start at 0, got %v", last.MinScore)
	}

	if len(c.PayoutBands) == 0 {
		return fmt.Errorf("no payout bands configured")
	}
	for i, b := range c.PayoutBands {
		if b.PayoutPercent <= 0 || b.PayoutPercent > 100 {
			return fmt.Errorf("payout band %d: percent %v out of (0, 100]", i, b.PayoutPercent)
		}
		if i == 0 {
			if b.MinAverage != 0 {
				return fmt.Errorf("first payout band must start at 0")
			}
			continue
		}
		prev := c.PayoutBands[i-1]
		if prev.MaxAverage < 0 {
			return fmt.Errorf("payout band %d: unbounded band must be last", i-1)
		}
		if b.MinAverage != prev.MaxAverage {
			return fmt.Errorf("payout bands must be contiguous: band %d starts at %v, previous ends at %v", i, b.MinAverage, prev.MaxAverage)
		}
	}

	p := c.Progress
	if len(p.Thresholds) == 0 {
		return fmt.Errorf("no progress thresholds configured")
	}
	if p.Thresholds[0] != 0 {
		return fmt.Errorf("first progress threshold must be 0")
	}
	for i := 1; i < len(p.Thresholds); i++ {
		if p.Thresholds[i] <= p.Thresholds[i-1] {
			return fmt.Errorf("progress thresholds must be strictly increasing")
		}
	}
	if p.PointsPerDay < 0 || p.DayPointsCap < 0 || p.MinimumPoints < 0 {
		return fmt.Errorf("progress point parameters must be non-negative")
	}
	return nil
}

// DomainPayoutBands converts the configured bands to their domain form,
// mapping the unbounded sentinel to +Inf.
func (c *Config) DomainPayoutBands() []domain.PayoutBand {
	out := make([]domain.PayoutBand, len(c.PayoutBands))
	for i, b := range c.PayoutBands {
		max := b.MaxAverage
		if max < 0 {
			max = math.Inf(1)
		}
		out[i] = domain.PayoutBand{
			MinAverage:    b.MinAverage,
			MaxAverage:    max,
			PayoutPercent: b.PayoutPercent,
			Level:         b.Level,
			Color:         b.Color,
			Description:   b.Description,
		}
	}
	return out
}
