// Package srs implements the scheduling algorithm: a pure computation
// mapping the current memory state and a grade to updated stability,
// difficulty, the next due date, and the leech flag. It performs no I/O;
// all persistence is done by the caller.
package srs

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/lernkarte/lernkarte/internal/domain"
)

// Common errors
var (
	ErrInvalidGrade  = errors.New("invalid grade")
	ErrInvalidParams = errors.New("invalid scheduler parameters")
)

// ReviewState is the memory state the scheduler reads. Stability,
// Difficulty and LastReviewAt are nil before the first grading.
type ReviewState struct {
	Stability    *float64
	Difficulty   *float64
	LastReviewAt *time.Time
	LapseStreak  int
	Leech        bool
}

// Result is the scheduler's output for one grading action.
type Result struct {
	Stability    float64
	Difficulty   float64
	DueAt        time.Time
	IntervalDays int // zero for the sub-day "again" re-presentation
	LapseStreak  int
	Leech        bool
}

// Service defines the scheduler operations.
type Service interface {
	// Schedule computes the updated memory state and next due date for a
	// grading action at time now. The input state is not modified.
	Schedule(state ReviewState, grade domain.Grade, now time.Time) (Result, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
	algo   algo

	// rngMu guards rng: one scheduler instance serves all users'
	// handlers concurrently and *rand.Rand is not safe for
	// concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewDefaultService creates a scheduler with default parameters.
func NewDefaultService() Service {
	svc, err := NewService(NewDefaultParams())
	if err != nil {
		// Defaults always validate.
		panic(err)
	}
	return svc
}

// NewService creates a scheduler with the given parameters.
func NewService(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrInvalidParams
	}
	if err := params.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidParams, err)
	}
	return &defaultService{
		params: params,
		algo:   newAlgo(params.Weights),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Schedule implements the Service interface.
func (s *defaultService) Schedule(state ReviewState, grade domain.Grade, now time.Time) (Result, error) {
	if !grade.IsValid() {
		return Result{}, ErrInvalidGrade
	}
	now = now.UTC()

	var stability, difficulty float64
	if state.Stability == nil || state.Difficulty == nil {
		// First grading: seed the memory state from the grade alone.
		stability = s.algo.initStability(grade)
		difficulty = s.algo.initDifficulty(grade, true)
	} else {
		var elapsedDays float64
		if state.LastReviewAt != nil {
			elapsedDays = now.Sub(*state.LastReviewAt).Hours() / 24.0
		}
		if elapsedDays < 0 {
			elapsedDays = 0
		}
		r := s.algo.retrievability(elapsedDays, *state.Stability)
		stability = s.algo.nextStability(*state.Difficulty, *state.Stability, r, grade)
		difficulty = s.algo.nextDifficulty(*state.Difficulty, grade)
	}

	res := Result{
		Stability:   stability,
		Difficulty:  difficulty,
		LapseStreak: state.LapseStreak,
		Leech:       state.Leech,
	}

	// "Again" re-presents the card within the same pass rather than on a
	// future day.
	if grade == domain.GradeAgain {
		res.DueAt = now.Add(time.Duration(s.params.AgainReviewMinutes) * time.Minute)
	} else {
		days := s.algo.intervalDays(stability, s.params.DesiredRetention,
			s.params.MinIntervalDays, s.params.MaxIntervalDays)
		if s.params.EnableFuzz {
			s.rngMu.Lock()
			days = applyFuzz(days, s.params.MaxIntervalDays, s.rng)
			s.rngMu.Unlock()
			if days < s.params.MinIntervalDays {
				days = s.params.MinIntervalDays
			}
		}
		res.IntervalDays = days
		res.DueAt = now.Add(time.Duration(days) * 24 * time.Hour)
	}

	// Leech detection: consecutive grades at or below the configured
	// ceiling flag the card once the limit is reached; any better grade
	// resets the streak.
	if grade.Rank() <= s.params.LowGradeCeiling.Rank() {
		res.LapseStreak = state.LapseStreak + 1
		if res.LapseStreak >= s.params.LeechLapseLimit {
			res.Leech = true
		}
	} else {
		res.LapseStreak = 0
	}

	return res, nil
}
