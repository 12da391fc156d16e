package srs

import (
	"fmt"

	"github.com/lernkarte/lernkarte/internal/domain"
)

// DefaultWeights are the published FSRS-6 default parameter values.
// They are a starting point; deployments tune them per user cohort.
var DefaultWeights = [21]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w[0..3]  initial stability per grade
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty
	1.8722, 0.1666, 0.796, 1.4835, // w[8..11] recall stability
	0.0614, 0.2629, 1.6483, 0.6014, // w[12..15] forget stability
	1.8729, 0.5425, 0.0912, 0.0658, // w[16..19] easy bonus / short-term
	0.1542, // w[20] decay exponent
}

// Params defines all configurable parameters for the scheduler.
type Params struct {
	// Weights is the FSRS parameter vector.
	Weights [21]float64

	// DesiredRetention is the recall probability the schedule aims for,
	// in (0, 1].
	DesiredRetention float64

	// MinIntervalDays and MaxIntervalDays clamp the computed interval.
	MinIntervalDays int
	MaxIntervalDays int

	// AgainReviewMinutes schedules the near-immediate re-presentation
	// after an "again" grade, within the same pass.
	AgainReviewMinutes int

	// EnableFuzz randomizes intervals slightly to avoid due-date
	// clustering across a cohort of cards.
	EnableFuzz bool

	// LowGradeCeiling is the highest grade still counted as a lapse for
	// leech detection; LeechLapseLimit is the consecutive-lapse count
	// that flags the card.
	LowGradeCeiling domain.Grade
	LeechLapseLimit int
}

// NewDefaultParams creates a Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		Weights:            DefaultWeights,
		DesiredRetention:   0.9,
		MinIntervalDays:    1,
		MaxIntervalDays:    36500,
		AgainReviewMinutes: 10,
		EnableFuzz:         true,
		LowGradeCeiling:    domain.GradeAgain,
		LeechLapseLimit:    4,
	}
}

// Validate checks the parameter set for values the algorithm cannot work with.
func (p *Params) Validate() error {
	if p.DesiredRetention <= 0 || p.DesiredRetention > 1 {
		return fmt.Errorf("desired retention %f out of range (0, 1]", p.DesiredRetention)
	}
	if p.MinIntervalDays < 1 {
		return fmt.Errorf("minimum interval %d must be at least 1 day", p.MinIntervalDays)
	}
	if p.MaxIntervalDays < p.MinIntervalDays {
		return fmt.Errorf("maximum interval %d below minimum %d", p.MaxIntervalDays, p.MinIntervalDays)
	}
	if p.AgainReviewMinutes < 1 {
		return fmt.Errorf("again review minutes %d must be positive", p.AgainReviewMinutes)
	}
	if !p.LowGradeCeiling.IsValid() {
		return fmt.Errorf("low grade ceiling %q is not a grade", p.LowGradeCeiling)
	}
	if p.LeechLapseLimit < 1 {
		return fmt.Errorf("leech lapse limit %d must be positive", p.LeechLapseLimit)
	}
	if p.Weights[20] <= 0 {
		return fmt.Errorf("decay weight w[20] must be positive, got %f", p.Weights[20])
	}
	return nil
}
