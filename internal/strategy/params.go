package strategy

import (
	"errors"
	"fmt"
)

// Params holds every threshold and weight the engine uses. NewEngine takes
// them literally; WithDefaults fills the zero fields of a partial set.
type Params struct {
	TrendThreshold       float64 `yaml:"trend_threshold" json:"trend_threshold"`
	TrendConfidenceScale float64 `yaml:"trend_confidence_scale" json:"trend_confidence_scale"`
	SidewaysConfidence   float64 `yaml:"sideways_confidence" json:"sideways_confidence"`
	SwingThreshold       float64 `yaml:"swing_threshold" json:"swing_threshold"`
	SwingConfidenceScale float64 `yaml:"swing_confidence_scale" json:"swing_confidence_scale"`

	MaxLagDays        int     `yaml:"max_lag_days" json:"max_lag_days"`
	LagDecayPerDay    float64 `yaml:"lag_decay_per_day" json:"lag_decay_per_day"`
	LagPenaltyFloor   float64 `yaml:"lag_penalty_floor" json:"lag_penalty_floor"`
	DirectionAgree    float64 `yaml:"direction_agree" json:"direction_agree"`
	DirectionNeutral  float64 `yaml:"direction_neutral" json:"direction_neutral"`
	DirectionConflict float64 `yaml:"direction_conflict" json:"direction_conflict"`
	NoiseFloor        float64 `yaml:"noise_floor" json:"noise_floor"`
}

// DefaultParams returns the stock heuristic.
func DefaultParams() Params {
	return Params{
		TrendThreshold:       0.05,
		TrendConfidenceScale: 5,
		SidewaysConfidence:   0.6,
		SwingThreshold:       0.08,
		SwingConfidenceScale: 4,

		MaxLagDays:        7,
		LagDecayPerDay:    0.1,
		LagPenaltyFloor:   0.4,
		DirectionAgree:    1.0,
		DirectionNeutral:  0.7,
		DirectionConflict: 0.4,
		NoiseFloor:        0.05,
	}
}

// WithDefaults returns a copy of p with every zero field taken from
// DefaultParams. A deliberate zero is lost, so config decoding starts from
// DefaultParams instead.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&p.TrendThreshold, d.TrendThreshold)
	fill(&p.TrendConfidenceScale, d.TrendConfidenceScale)
	fill(&p.SidewaysConfidence, d.SidewaysConfidence)
	fill(&p.SwingThreshold, d.SwingThreshold)
	fill(&p.SwingConfidenceScale, d.SwingConfidenceScale)
	fill(&p.LagDecayPerDay, d.LagDecayPerDay)
	fill(&p.LagPenaltyFloor, d.LagPenaltyFloor)
	fill(&p.DirectionAgree, d.DirectionAgree)
	fill(&p.DirectionNeutral, d.DirectionNeutral)
	fill(&p.DirectionConflict, d.DirectionConflict)
	fill(&p.NoiseFloor, d.NoiseFloor)
	if p.MaxLagDays == 0 {
		p.MaxLagDays = d.MaxLagDays
	}
	return p
}

// ErrInvalidParams wraps every Validate failure.
var ErrInvalidParams = errors.New("invalid engine params")

// Validate rejects parameter sets that would break the score bounds.
func (p Params) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{p.TrendThreshold > 0 && p.TrendThreshold < 1, "trend_threshold must be in (0,1)"},
		{p.TrendConfidenceScale > 0, "trend_confidence_scale must be positive"},
		{p.SidewaysConfidence >= 0 && p.SidewaysConfidence <= 1, "sideways_confidence must be in [0,1]"},
		{p.SwingThreshold > 0, "swing_threshold must be positive"},
		{p.SwingConfidenceScale > 0, "swing_confidence_scale must be positive"},
		{p.MaxLagDays >= 0, "max_lag_days must not be negative"},
		{p.LagDecayPerDay >= 0, "lag_decay_per_day must not be negative"},
		{p.LagPenaltyFloor >= 0 && p.LagPenaltyFloor <= 1, "lag_penalty_floor must be in [0,1]"},
		{p.DirectionConflict >= 0 && p.DirectionAgree <= 1, "direction factors must be in [0,1]"},
		{p.DirectionAgree >= p.DirectionNeutral && p.DirectionNeutral >= p.DirectionConflict,
			"direction factors must satisfy agree >= neutral >= conflict"},
		{p.NoiseFloor >= 0 && p.NoiseFloor < 1, "noise_floor must be in [0,1)"},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s", ErrInvalidParams, c.msg)
		}
	}
	return nil
}
