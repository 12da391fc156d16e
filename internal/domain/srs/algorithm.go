package srs

import (
	"math"

	"github.com/lernkarte/lernkarte/internal/domain"
)

// algo holds precomputed constants derived from the weight vector.
type algo struct {
	w      [21]float64
	decay  float64 // -w[20]
	factor float64 // 0.9^(1/decay) - 1
}

func newAlgo(w [21]float64) algo {
	decay := -w[20]
	factor := math.Pow(0.9, 1.0/decay) - 1.0
	return algo{w: w, decay: decay, factor: factor}
}

// retrievability computes R(t, S) = (1 + FACTOR * t / S) ^ DECAY, the
// probability of recall after t elapsed days at stability S.
func (a *algo) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+a.factor*elapsedDays/stability, a.decay)
}

// initStability returns the first-review stability S0(G) = w[G-1].
func (a *algo) initStability(grade domain.Grade) float64 {
	return clampStability(a.w[grade.Rank()-1])
}

// initDifficulty returns the first-review difficulty
// D0(G) = w[4] - e^(w[5] * (G - 1)) + 1, clamped to [1, 10] when clamp is set.
func (a *algo) initDifficulty(grade domain.Grade, clamp bool) float64 {
	d := a.w[4] - math.Exp(a.w[5]*float64(grade.Rank()-1)) + 1
	if clamp {
		return clampDifficulty(d)
	}
	return d
}

// intervalDays converts stability into a review interval:
// I(r, S) = round((S / FACTOR) * (r^(1/DECAY) - 1)), clamped to
// [minIvl, maxIvl].
func (a *algo) intervalDays(stability, desiredRetention float64, minIvl, maxIvl int) int {
	ivl := stability / a.factor * (math.Pow(desiredRetention, 1.0/a.decay) - 1)
	rounded := int(math.Round(ivl))
	if rounded < minIvl {
		rounded = minIvl
	}
	if rounded > maxIvl {
		rounded = maxIvl
	}
	return rounded
}

// nextDifficulty computes the updated difficulty after a review:
// linear damping toward the extremes plus mean reversion toward D0(Easy).
func (a *algo) nextDifficulty(difficulty float64, grade domain.Grade) float64 {
	deltaD := -a.w[6] * (float64(grade.Rank()) - 3)
	damped := difficulty + (10-difficulty)*deltaD/9
	reverted := a.w[7]*a.initDifficulty(domain.GradeEasy, false) + (1-a.w[7])*damped
	return clampDifficulty(reverted)
}

// nextStability dispatches on recall success: "again" means the card was
// forgotten, everything else is a successful recall.
func (a *algo) nextStability(difficulty, stability, retrievability float64, grade domain.Grade) float64 {
	if grade == domain.GradeAgain {
		return clampStability(a.forgetStability(difficulty, stability, retrievability))
	}
	return clampStability(a.recallStability(difficulty, stability, retrievability, grade))
}

// recallStability computes stability after a successful recall:
// S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^((1-R)*w[10]) - 1)
//          * hardPenalty * easyBonus)
func (a *algo) recallStability(d, s, r float64, grade domain.Grade) float64 {
	hardPenalty := 1.0
	if grade == domain.GradeHard {
		hardPenalty = a.w[15]
	}
	easyBonus := 1.0
	if grade == domain.GradeEasy {
		easyBonus = a.w[16]
	}
	return s * (1 + math.Exp(a.w[8])*
		(11-d)*
		math.Pow(s, -a.w[9])*
		(math.Exp((1-r)*a.w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability computes stability after forgetting:
// min(w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^((1-R)*w[14]),
//     S / e^(w[17] * w[18]))
func (a *algo) forgetStability(d, s, r float64) float64 {
	long := a.w[11] *
		math.Pow(d, -a.w[12]) *
		(math.Pow(s+1, a.w[13]) - 1) *
		math.Exp((1-r)*a.w[14])
	short := s / math.Exp(a.w[17]*a.w[18])
	return math.Min(long, short)
}

func clampStability(s float64) float64 {
	return math.Max(s, 0.001)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
