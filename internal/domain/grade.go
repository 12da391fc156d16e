package domain

// Grade represents the user's assessment of recall quality for one view.
// The values mirror the grading buttons shown after the card back is revealed.
type Grade string

// Possible grade values, ordered from worst to best recall.
const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

var gradeRanks = map[Grade]int{
	GradeAgain: 1,
	GradeHard:  2,
	GradeGood:  3,
	GradeEasy:  4,
}

// IsValid reports whether g is one of the four known grades.
func (g Grade) IsValid() bool {
	_, ok := gradeRanks[g]
	return ok
}

// Rank returns the numeric position of the grade, 1 (again) through 4 (easy).
// Invalid grades rank 0.
func (g Grade) Rank() int {
	return gradeRanks[g]
}

// AllGrades returns the grades in button order (again, hard, good, easy).
func AllGrades() []Grade {
	return []Grade{GradeAgain, GradeHard, GradeGood, GradeEasy}
}
