package study

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/domain/srs"
	"github.com/lernkarte/lernkarte/internal/events"
	"github.com/lernkarte/lernkarte/internal/generation"
	"github.com/lernkarte/lernkarte/internal/store"
)

// newCardWindow is the lookback used for the per-session new-card budget:
// new cards first studied within this window count against the budget.
const newCardWindow = 12 * time.Hour

// ImageRequester enqueues background illustration work. Requests are
// best-effort; the session loop never waits on them.
type ImageRequester interface {
	// RequestCardImage asks for an illustration of the given card.
	RequestCardImage(cardID uuid.UUID)

	// RequestSessionArt asks for a completion illustration for the user's
	// finished session.
	RequestSessionArt(userID uuid.UUID)
}

// Config holds the study-loop policy knobs.
type Config struct {
	// NewCardsPerSession caps never-before-studied cards per window.
	// Zero disables the cap.
	NewCardsPerSession int

	// TargetLanguage is the language prose card sides are translated into.
	TargetLanguage string

	// DueCardLimit bounds the due-card query.
	DueCardLimit int
}

// Service wires the stores, the scheduler and the collaborators into the
// event handlers of the study session loop.
type Service struct {
	runTx      store.TxRunner
	cards      store.CardStore
	views      store.ViewStore
	scheduler  srs.Service
	translator generation.Translator // nil disables translation
	images     ImageRequester        // nil disables illustrations
	publisher  events.Publisher
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates the study service. translator and images may be nil;
// the loop then degrades to untranslated text and no illustrations.
func NewService(
	runTx store.TxRunner,
	cards store.CardStore,
	views store.ViewStore,
	scheduler srs.Service,
	translator generation.Translator,
	images ImageRequester,
	publisher events.Publisher,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if runTx == nil {
		panic("transaction runner cannot be nil")
	}
	if cards == nil {
		panic("card store cannot be nil")
	}
	if views == nil {
		panic("view store cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if publisher == nil {
		panic("publisher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		runTx:      runTx,
		cards:      cards,
		views:      views,
		scheduler:  scheduler,
		translator: translator,
		images:     images,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "study_service")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RegisterHandlers subscribes the session loop on the bus. The next card
// is surfaced both on an explicit session request and after every
// committed grade, which is what keeps a session flowing.
func (s *Service) RegisterHandlers(bus *events.Bus) {
	bus.Subscribe(events.TypeStudySessionRequested, events.Sync, s.handleSessionRequested)
	bus.Subscribe(events.TypeCardAnswerRequested, events.Sync, s.handleAnswerRequested)
	bus.Subscribe(events.TypeCardGradeSelected, events.Sync, s.handleGradeSelected)
	bus.Subscribe(events.TypeCardGraded, events.Sync, s.handleCardGraded)
	bus.Subscribe(events.TypeCardGraded, events.Background, s.handleLeechCheck)
}

func (s *Service) handleSessionRequested(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.StudySessionRequested)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}
	return s.showNextCard(ctx, ev.UserID)
}

func (s *Service) handleCardGraded(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.CardGraded)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}
	return s.showNextCard(ctx, ev.UserID)
}

// showNextCard surfaces the earliest-due card within the horizon, or ends
// the session when the queue is empty.
func (s *Service) showNextCard(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	horizon := endOfToday(now)

	due, err := s.cards.GetDueCards(ctx, userID, horizon, s.cfg.DueCardLimit)
	if err != nil {
		return fmt.Errorf("failed to query due cards: %w", err)
	}

	card, err := s.pickNext(ctx, userID, due, now)
	if err != nil {
		return err
	}

	if card == nil {
		s.logger.InfoContext(ctx, "session finished",
			slog.String("user_id", userID.String()))
		if s.images != nil {
			s.images.RequestSessionArt(userID)
		}
		return s.publisher.Publish(ctx, events.StudySessionFinished{UserID: userID})
	}

	front := s.present(ctx, card.Front)

	if card.Leech && !card.HasImage() && s.images != nil {
		s.images.RequestCardImage(card.ID)
	}

	shown := events.CardQuestionShown{
		UserID: userID,
		CardID: card.ID,
		Front:  front,
	}
	if card.ImageRef != nil {
		shown.ImageRef = *card.ImageRef
	}
	return s.publisher.Publish(ctx, shown)
}

// pickNext applies the new-card budget to the due queue and returns the
// first admissible card, nil when the queue is exhausted.
func (s *Service) pickNext(ctx context.Context, userID uuid.UUID, due []*domain.Card, now time.Time) (*domain.Card, error) {
	if len(due) == 0 {
		return nil, nil
	}
	if s.cfg.NewCardsPerSession <= 0 {
		return due[0], nil
	}

	studied, err := s.cards.CountNewStudied(ctx, userID, now.Add(-newCardWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count new cards studied: %w", err)
	}
	allowance := s.cfg.NewCardsPerSession - studied

	for _, card := range due {
		if card.LastReviewAt != nil {
			return card, nil
		}
		if allowance > 0 {
			return card, nil
		}
	}
	return nil, nil
}

func (s *Service) handleAnswerRequested(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.CardAnswerRequested)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}

	card, err := s.cards.GetByID(ctx, ev.CardID)
	if err != nil {
		return err
	}
	// Ownership mismatch reads the same as a missing card to the caller.
	if card.UserID != ev.UserID {
		return store.ErrCardNotFound
	}

	view, err := domain.NewView(card.ID, ev.UserID)
	if err != nil {
		return err
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.views.WithTx(tx).Create(ctx, view)
	})
	if err != nil {
		return fmt.Errorf("failed to open view: %w", err)
	}

	return s.publisher.Publish(ctx, events.CardAnswerShown{
		UserID: ev.UserID,
		ViewID: view.ID,
		CardID: card.ID,
		Front:  s.present(ctx, card.Front),
		Back:   s.present(ctx, card.Back),
	})
}

func (s *Service) handleGradeSelected(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.CardGradeSelected)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}

	grade := domain.Grade(ev.Grade)
	if !grade.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidGrade, ev.Grade)
	}

	view, err := s.views.GetByID(ctx, ev.ViewID)
	if err != nil {
		return err
	}
	if view.UserID != ev.UserID {
		return store.ErrViewNotFound
	}
	if view.Graded {
		return store.ErrAlreadyGraded
	}

	card, err := s.cards.GetByID(ctx, view.CardID)
	if err != nil {
		return err
	}

	now := s.now()
	result, err := s.scheduler.Schedule(srs.ReviewState{
		Stability:    card.Stability,
		Difficulty:   card.Difficulty,
		LastReviewAt: card.LastReviewAt,
		LapseStreak:  card.LapseStreak,
		Leech:        card.Leech,
	}, grade, now)
	if err != nil {
		return fmt.Errorf("failed to schedule card: %w", err)
	}

	if err := view.RecordGrade(grade, result.Stability, result.Difficulty, result.DueAt, now); err != nil {
		return err
	}

	card.Stability = &result.Stability
	card.Difficulty = &result.Difficulty
	card.LastReviewAt = &now
	card.DueAt = result.DueAt
	card.LapseStreak = result.LapseStreak
	card.Leech = result.Leech
	card.UpdatedAt = now

	// The view's graded flag and the card's memory state commit together;
	// the store's test-and-set on the flag makes replays fail here with
	// ErrAlreadyGraded before any state moves.
	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.views.WithTx(tx).RecordGrade(ctx, view); err != nil {
			return err
		}
		return s.cards.WithTx(tx).UpdateScheduling(ctx, card)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "card graded",
		slog.String("card_id", card.ID.String()),
		slog.String("grade", string(grade)),
		slog.Int("interval_days", result.IntervalDays),
		slog.Bool("leech", result.Leech))

	return s.publisher.Publish(ctx, events.CardGraded{
		UserID: ev.UserID,
		ViewID: view.ID,
		CardID: card.ID,
	})
}

// handleLeechCheck runs in the background after a grade commits and hands
// freshly flagged leeches to the coordinator.
func (s *Service) handleLeechCheck(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.CardGraded)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}
	if s.images == nil {
		return nil
	}

	card, err := s.cards.GetByID(ctx, ev.CardID)
	if err != nil {
		return err
	}
	if card.Leech && !card.HasImage() {
		s.images.RequestCardImage(card.ID)
	}
	return nil
}

// present renders a card side for display: prose sides are translated
// into the target language, falling back to the original text when the
// translator is unavailable or fails.
func (s *Service) present(ctx context.Context, text string) string {
	if s.translator == nil || !domain.IsProse(text) {
		return text
	}

	translated, err := s.translator.Translate(ctx, text, s.cfg.TargetLanguage)
	if err != nil {
		s.logger.WarnContext(ctx, "translation unavailable, showing original text",
			slog.String("error", err.Error()))
		return text
	}
	return translated
}

// endOfToday returns the start of the next UTC day, the horizon up to
// which cards count as due in the current session.
func endOfToday(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
