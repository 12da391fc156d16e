package events

import "github.com/google/uuid"

// Event type names.
const (
	TypeStudySessionRequested = "study.session_requested"
	TypeStudySessionFinished  = "study.session_finished"
	TypeCardQuestionShown     = "study.card_question_shown"
	TypeCardAnswerRequested   = "study.card_answer_requested"
	TypeCardAnswerShown       = "study.card_answer_shown"
	TypeCardGradeSelected     = "study.card_grade_selected"
	TypeCardGraded            = "study.card_graded"
	TypeImageGenerated        = "study.image_generated"
	TypeSessionArtReady       = "study.session_art_ready"
)

// Event is a value object: a type tag plus an immutable payload. Events
// are never mutated after publication.
type Event interface {
	// EventType returns the type tag used for subscription matching.
	EventType() string
}

// StudySessionRequested starts (or resumes) a study session for a user.
type StudySessionRequested struct {
	UserID uuid.UUID
}

// StudySessionFinished signals that the user has no cards left to study.
type StudySessionFinished struct {
	UserID uuid.UUID
}

// CardQuestionShown carries the front side of the next due card. Front
// holds the presentation text, already translated when the policy asked
// for it; ImageRef is empty when the card has no illustration.
type CardQuestionShown struct {
	UserID   uuid.UUID
	CardID   uuid.UUID
	Front    string
	ImageRef string
}

// CardAnswerRequested is the inbound callback asking to reveal the back
// of a card. The card id comes from the button payload and must be
// validated against the store.
type CardAnswerRequested struct {
	UserID uuid.UUID
	CardID uuid.UUID
}

// CardAnswerShown carries the opened view id and both card sides for
// rendering together with the grading buttons.
type CardAnswerShown struct {
	UserID uuid.UUID
	ViewID uuid.UUID
	CardID uuid.UUID
	Front  string
	Back   string
}

// CardGradeSelected is the inbound callback carrying the user's grade for
// an open view.
type CardGradeSelected struct {
	UserID uuid.UUID
	ViewID uuid.UUID
	Grade  string
}

// CardGraded signals that a grade was committed exactly once for a view.
type CardGraded struct {
	UserID uuid.UUID
	ViewID uuid.UUID
	CardID uuid.UUID
}

// ImageGenerated signals that an illustration now exists for a card.
type ImageGenerated struct {
	CardID   uuid.UUID
	ImageRef string
}

// SessionArtReady signals that a completion illustration for the user's
// finished session is available.
type SessionArtReady struct {
	UserID   uuid.UUID
	ImageRef string
}

func (StudySessionRequested) EventType() string { return TypeStudySessionRequested }
func (StudySessionFinished) EventType() string  { return TypeStudySessionFinished }
func (CardQuestionShown) EventType() string     { return TypeCardQuestionShown }
func (CardAnswerRequested) EventType() string   { return TypeCardAnswerRequested }
func (CardAnswerShown) EventType() string       { return TypeCardAnswerShown }
func (CardGradeSelected) EventType() string     { return TypeCardGradeSelected }
func (CardGraded) EventType() string            { return TypeCardGraded }
func (ImageGenerated) EventType() string        { return TypeImageGenerated }
func (SessionArtReady) EventType() string       { return TypeSessionArtReady }
