package study

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/domain/srs"
	"github.com/lernkarte/lernkarte/internal/events"
	"github.com/lernkarte/lernkarte/internal/generation"
	"github.com/lernkarte/lernkarte/internal/mocks"
	"github.com/lernkarte/lernkarte/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// recorder collects every published event for assertions.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) register(bus *events.Bus) {
	types := []string{
		events.TypeStudySessionRequested,
		events.TypeStudySessionFinished,
		events.TypeCardQuestionShown,
		events.TypeCardAnswerRequested,
		events.TypeCardAnswerShown,
		events.TypeCardGradeSelected,
		events.TypeCardGraded,
		events.TypeImageGenerated,
	}
	for _, eventType := range types {
		bus.Subscribe(eventType, events.Sync, func(ctx context.Context, e events.Event) error {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
			return nil
		})
	}
}

func (r *recorder) ofType(eventType string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// imageRecorder implements ImageRequester.
type imageRecorder struct {
	mu          sync.Mutex
	cardImages  []uuid.UUID
	sessionArts []uuid.UUID
}

func (i *imageRecorder) RequestCardImage(cardID uuid.UUID) {
	i.mu.Lock()
	i.cardImages = append(i.cardImages, cardID)
	i.mu.Unlock()
}

func (i *imageRecorder) RequestSessionArt(userID uuid.UUID) {
	i.mu.Lock()
	i.sessionArts = append(i.sessionArts, userID)
	i.mu.Unlock()
}

type fixture struct {
	bus      *events.Bus
	cards    *mocks.MockCardStore
	views    *mocks.MockViewStore
	images   *imageRecorder
	recorded *recorder
	userID   uuid.UUID
}

func passthroughTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, (*sql.Tx)(nil))
}

func newFixture(t *testing.T, translator generation.Translator) *fixture {
	t.Helper()

	params := srs.NewDefaultParams()
	params.EnableFuzz = false
	params.LeechLapseLimit = 3
	scheduler, err := srs.NewService(params)
	require.NoError(t, err)

	f := &fixture{
		bus:      events.NewBus(nil),
		cards:    mocks.NewMockCardStore(),
		views:    mocks.NewMockViewStore(),
		images:   &imageRecorder{},
		recorded: &recorder{},
		userID:   uuid.New(),
	}

	svc := NewService(
		passthroughTx,
		f.cards,
		f.views,
		scheduler,
		translator,
		f.images,
		f.bus,
		Config{
			NewCardsPerSession: 12,
			TargetLanguage:     "English",
			DueCardLimit:       50,
		},
		nil,
	)
	svc.now = func() time.Time { return fixedNow }
	svc.RegisterHandlers(f.bus)
	f.recorded.register(f.bus)
	return f
}

func (f *fixture) addDueCard(t *testing.T, front, back string) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(f.userID, front, back)
	require.NoError(t, err)
	card.DueAt = fixedNow.Add(-time.Minute)
	require.NoError(t, f.cards.Create(context.Background(), card))
	return card
}

func TestSessionWithNoDueCardsFinishesImmediately(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	err := f.bus.Publish(context.Background(), events.StudySessionRequested{UserID: f.userID})
	require.NoError(t, err)

	assert.Len(t, f.recorded.ofType(events.TypeStudySessionFinished), 1)
	assert.Empty(t, f.recorded.ofType(events.TypeCardQuestionShown))
	assert.Equal(t, []uuid.UUID{f.userID}, f.images.sessionArts)
}

func TestFullSessionSingleCard(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	card := f.addDueCard(t, "die Katze", "the cat")
	ctx := context.Background()

	// Session request surfaces the card.
	require.NoError(t, f.bus.Publish(ctx, events.StudySessionRequested{UserID: f.userID}))
	shown := f.recorded.ofType(events.TypeCardQuestionShown)
	require.Len(t, shown, 1)
	assert.Equal(t, card.ID, shown[0].(events.CardQuestionShown).CardID)
	assert.Equal(t, "die Katze", shown[0].(events.CardQuestionShown).Front)

	// Answer request opens a view and reveals the back.
	require.NoError(t, f.bus.Publish(ctx, events.CardAnswerRequested{
		UserID: f.userID, CardID: card.ID,
	}))
	answers := f.recorded.ofType(events.TypeCardAnswerShown)
	require.Len(t, answers, 1)
	answer := answers[0].(events.CardAnswerShown)
	assert.Equal(t, "the cat", answer.Back)
	require.Len(t, f.views.Views, 1)

	// Grading commits the outcome and, with nothing else due, finishes.
	require.NoError(t, f.bus.Publish(ctx, events.CardGradeSelected{
		UserID: f.userID, ViewID: answer.ViewID, Grade: "good",
	}))
	require.Len(t, f.recorded.ofType(events.TypeCardGraded), 1)
	assert.Len(t, f.recorded.ofType(events.TypeStudySessionFinished), 1)

	updated, err := f.cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Stability)
	require.NotNil(t, updated.LastReviewAt)
	assert.Equal(t, fixedNow, *updated.LastReviewAt)
	assert.True(t, updated.DueAt.After(fixedNow.Add(23*time.Hour)),
		"a good grade reschedules beyond the session horizon")
}

func TestAgainKeepsCardInSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	card := f.addDueCard(t, "die Katze", "the cat")
	ctx := context.Background()

	require.NoError(t, f.bus.Publish(ctx, events.StudySessionRequested{UserID: f.userID}))
	require.NoError(t, f.bus.Publish(ctx, events.CardAnswerRequested{
		UserID: f.userID, CardID: card.ID,
	}))
	answer := f.recorded.ofType(events.TypeCardAnswerShown)[0].(events.CardAnswerShown)

	require.NoError(t, f.bus.Publish(ctx, events.CardGradeSelected{
		UserID: f.userID, ViewID: answer.ViewID, Grade: "again",
	}))

	// The sub-day re-presentation keeps the card due today, so the next
	// question shows it again instead of finishing.
	shown := f.recorded.ofType(events.TypeCardQuestionShown)
	require.Len(t, shown, 2)
	assert.Equal(t, card.ID, shown[1].(events.CardQuestionShown).CardID)
	assert.Empty(t, f.recorded.ofType(events.TypeStudySessionFinished))
}

func TestDuplicateGradeFailsWithoutSecondPublication(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	card := f.addDueCard(t, "die Katze", "the cat")
	ctx := context.Background()

	require.NoError(t, f.bus.Publish(ctx, events.CardAnswerRequested{
		UserID: f.userID, CardID: card.ID,
	}))
	answer := f.recorded.ofType(events.TypeCardAnswerShown)[0].(events.CardAnswerShown)

	require.NoError(t, f.bus.Publish(ctx, events.CardGradeSelected{
		UserID: f.userID, ViewID: answer.ViewID, Grade: "good",
	}))
	afterFirst, err := f.cards.GetByID(ctx, card.ID)
	require.NoError(t, err)

	err = f.bus.Publish(ctx, events.CardGradeSelected{
		UserID: f.userID, ViewID: answer.ViewID, Grade: "easy",
	})
	assert.ErrorIs(t, err, store.ErrAlreadyGraded)

	afterSecond, err := f.cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, afterFirst.Stability, afterSecond.Stability)
	assert.Equal(t, afterFirst.DueAt, afterSecond.DueAt)
	assert.Len(t, f.recorded.ofType(events.TypeCardGraded), 1)
}

func TestUnknownViewFailsWithNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	err := f.bus.Publish(context.Background(), events.CardGradeSelected{
		UserID: f.userID, ViewID: uuid.New(), Grade: "good",
	})
	assert.ErrorIs(t, err, store.ErrViewNotFound)
	assert.Empty(t, f.recorded.ofType(events.TypeCardGraded))
}

func TestAnswerRequestForForeignCardFailsWithNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	card := f.addDueCard(t, "die Katze", "the cat")

	err := f.bus.Publish(context.Background(), events.CardAnswerRequested{
		UserID: uuid.New(), CardID: card.ID,
	})
	assert.ErrorIs(t, err, store.ErrCardNotFound)
	assert.Empty(t, f.views.Views)
}

func TestGradeForForeignViewFailsWithNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	card := f.addDueCard(t, "die Katze", "the cat")
	ctx := context.Background()

	require.NoError(t, f.bus.Publish(ctx, events.CardAnswerRequested{
		UserID: f.userID, CardID: card.ID,
	}))
	answer := f.recorded.ofType(events.TypeCardAnswerShown)[0].(events.CardAnswerShown)

	err := f.bus.Publish(ctx, events.CardGradeSelected{
		UserID: uuid.New(), ViewID: answer.ViewID, Grade: "good",
	})
	assert.ErrorIs(t, err, store.ErrViewNotFound)
}

func TestInvalidGradeRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	err := f.bus.Publish(context.Background(), events.CardGradeSelected{
		UserID: f.userID, ViewID: uuid.New(), Grade: "perfect",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidGrade)
}

func TestLeechTriggersImageRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	card := f.addDueCard(t, "die Katze", "the cat")
	// One more lapse reaches the limit of 3.
	card.LapseStreak = 2
	require.NoError(t, f.cards.UpdateScheduling(context.Background(), card))
	ctx := context.Background()

	require.NoError(t, f.bus.Publish(ctx, events.CardAnswerRequested{
		UserID: f.userID, CardID: card.ID,
	}))
	answer := f.recorded.ofType(events.TypeCardAnswerShown)[0].(events.CardAnswerShown)

	require.NoError(t, f.bus.Publish(ctx, events.CardGradeSelected{
		UserID: f.userID, ViewID: answer.ViewID, Grade: "again",
	}))
	f.bus.Wait()

	updated, err := f.cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, updated.Leech)

	f.images.mu.Lock()
	defer f.images.mu.Unlock()
	assert.Contains(t, f.images.cardImages, card.ID)
}

func TestLeechWithImageNotRequestedAgain(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	card := f.addDueCard(t, "die Katze", "the cat")
	card.Leech = true
	ref := "images/katze.png"
	card.ImageRef = &ref
	require.NoError(t, f.cards.UpdateScheduling(context.Background(), card))

	require.NoError(t, f.bus.Publish(context.Background(),
		events.StudySessionRequested{UserID: f.userID}))
	f.bus.Wait()

	shown := f.recorded.ofType(events.TypeCardQuestionShown)
	require.Len(t, shown, 1)
	assert.Equal(t, ref, shown[0].(events.CardQuestionShown).ImageRef)

	f.images.mu.Lock()
	defer f.images.mu.Unlock()
	assert.Empty(t, f.images.cardImages)
}

func TestProseFrontIsTranslated(t *testing.T) {
	t.Parallel()

	translator := &mocks.MockTranslator{Prefix: "translated: "}
	f := newFixture(t, translator)
	f.addDueCard(t, "an animal that purrs and meows", "die Katze")

	require.NoError(t, f.bus.Publish(context.Background(),
		events.StudySessionRequested{UserID: f.userID}))

	shown := f.recorded.ofType(events.TypeCardQuestionShown)
	require.Len(t, shown, 1)
	assert.Equal(t, "translated: an animal that purrs and meows",
		shown[0].(events.CardQuestionShown).Front)
}

func TestSingleWordIsNotTranslated(t *testing.T) {
	t.Parallel()

	translator := &mocks.MockTranslator{Prefix: "translated: "}
	f := newFixture(t, translator)
	f.addDueCard(t, "Katze", "cat")

	require.NoError(t, f.bus.Publish(context.Background(),
		events.StudySessionRequested{UserID: f.userID}))

	shown := f.recorded.ofType(events.TypeCardQuestionShown)
	require.Len(t, shown, 1)
	assert.Equal(t, "Katze", shown[0].(events.CardQuestionShown).Front)
	assert.Zero(t, translator.CallCount())
}

func TestTranslationFailureFallsBackToOriginal(t *testing.T) {
	t.Parallel()

	translator := &mocks.MockTranslator{Err: generation.ErrServiceUnavailable}
	f := newFixture(t, translator)
	f.addDueCard(t, "an animal that purrs and meows", "die Katze")

	err := f.bus.Publish(context.Background(),
		events.StudySessionRequested{UserID: f.userID})
	require.NoError(t, err, "translator failure never fails the session")

	shown := f.recorded.ofType(events.TypeCardQuestionShown)
	require.Len(t, shown, 1)
	assert.Equal(t, "an animal that purrs and meows",
		shown[0].(events.CardQuestionShown).Front)
}

func TestNewCardBudgetExhausted(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.addDueCard(t, "Katze", "cat")
	f.cards.NewStudied = 12 // budget spent for this window

	require.NoError(t, f.bus.Publish(context.Background(),
		events.StudySessionRequested{UserID: f.userID}))

	assert.Empty(t, f.recorded.ofType(events.TypeCardQuestionShown))
	assert.Len(t, f.recorded.ofType(events.TypeStudySessionFinished), 1)
}

func TestReviewedCardsBypassNewCardBudget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	card := f.addDueCard(t, "Katze", "cat")
	lastReview := fixedNow.AddDate(0, 0, -3)
	card.LastReviewAt = &lastReview
	require.NoError(t, f.cards.UpdateScheduling(context.Background(), card))
	f.cards.NewStudied = 12

	require.NoError(t, f.bus.Publish(context.Background(),
		events.StudySessionRequested{UserID: f.userID}))

	shown := f.recorded.ofType(events.TypeCardQuestionShown)
	require.Len(t, shown, 1)
	assert.Equal(t, card.ID, shown[0].(events.CardQuestionShown).CardID)
}

func TestNewViewSupersedesOpenView(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	first := f.addDueCard(t, "Katze", "cat")
	second := f.addDueCard(t, "Hund", "dog")
	ctx := context.Background()

	require.NoError(t, f.bus.Publish(ctx, events.CardAnswerRequested{
		UserID: f.userID, CardID: first.ID,
	}))
	require.NoError(t, f.bus.Publish(ctx, events.CardAnswerRequested{
		UserID: f.userID, CardID: second.ID,
	}))

	require.Len(t, f.views.Views, 1, "only one open view per user survives")
	for _, view := range f.views.Views {
		assert.Equal(t, second.ID, view.CardID)
	}
}

func TestDueCardsComeEarliestFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	later := f.addDueCard(t, "Hund", "dog")
	earlier := f.addDueCard(t, "Katze", "cat")
	earlier.DueAt = later.DueAt.Add(-time.Hour)
	require.NoError(t, f.cards.UpdateScheduling(context.Background(), earlier))

	require.NoError(t, f.bus.Publish(context.Background(),
		events.StudySessionRequested{UserID: f.userID}))

	shown := f.recorded.ofType(events.TypeCardQuestionShown)
	require.Len(t, shown, 1)
	assert.Equal(t, earlier.ID, shown[0].(events.CardQuestionShown).CardID)
}

func TestStoreFailurePropagates(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	boom := errors.New("database down")
	f.cards.GetDueCardsFn = func(ctx context.Context, userID uuid.UUID, horizon time.Time, limit int) ([]*domain.Card, error) {
		return nil, boom
	}

	err := f.bus.Publish(context.Background(),
		events.StudySessionRequested{UserID: f.userID})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.recorded.ofType(events.TypeStudySessionFinished))
}

func TestEndOfToday(t *testing.T) {
	t.Parallel()

	horizon := endOfToday(time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), horizon)
}
