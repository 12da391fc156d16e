package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/events"
	"github.com/lernkarte/lernkarte/internal/generation"
	"github.com/lernkarte/lernkarte/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector records published events.
type collector struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *collector) Publish(ctx context.Context, event events.Event) error {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	return nil
}

func (c *collector) all() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}

func newTestCoordinator(t *testing.T, cards *mocks.MockCardStore, images generation.ImageGenerator) (*Coordinator, *collector) {
	t.Helper()
	return newTranslatingCoordinator(t, cards, nil, images)
}

func newTranslatingCoordinator(t *testing.T, cards *mocks.MockCardStore, translator generation.Translator, images generation.ImageGenerator) (*Coordinator, *collector) {
	t.Helper()
	published := &collector{}
	coord := NewCoordinator(cards, translator, images, published, CoordinatorConfig{
		WorkerCount:    1,
		QueueSize:      16,
		JobTimeout:     5 * time.Second,
		TargetLanguage: "English",
	}, nil)
	coord.Start(context.Background())
	t.Cleanup(coord.Stop)
	return coord, published
}

func addCard(t *testing.T, cards *mocks.MockCardStore) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), "die Katze", "the cat")
	require.NoError(t, err)
	require.NoError(t, cards.Create(context.Background(), card))
	return card
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCardImageGeneratedAndAnnounced(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	card := addCard(t, cards)
	images := &mocks.MockImageGenerator{Ref: "images/katze.png"}
	coord, published := newTestCoordinator(t, cards, images)

	coord.RequestCardImage(card.ID)

	waitFor(t, func() bool { return len(published.all()) == 1 })

	updated, err := cards.GetByID(context.Background(), card.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ImageRef)
	assert.Equal(t, "images/katze.png", *updated.ImageRef)

	announced := published.all()[0].(events.ImageGenerated)
	assert.Equal(t, card.ID, announced.CardID)
	assert.Equal(t, "images/katze.png", announced.ImageRef)
}

func TestCardImagePromptUsesTranslatedExplanation(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	card := addCard(t, cards)
	translator := &mocks.MockTranslator{}
	images := &mocks.MockImageGenerator{Ref: "images/katze.png"}
	coord, published := newTranslatingCoordinator(t, cards, translator, images)

	coord.RequestCardImage(card.ID)

	waitFor(t, func() bool { return len(published.all()) == 1 })
	require.Equal(t, 1, images.CallCount())
	assert.Contains(t, images.Calls[0], `"die Katze"`)
	assert.Contains(t, images.Calls[0], "English: the cat",
		"the explanation is translated before prompting")
	assert.Equal(t, 1, translator.CallCount())
}

func TestCardImagePromptFallsBackWhenTranslationFails(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	card := addCard(t, cards)
	translator := &mocks.MockTranslator{Err: generation.ErrServiceUnavailable}
	images := &mocks.MockImageGenerator{Ref: "images/katze.png"}
	coord, published := newTranslatingCoordinator(t, cards, translator, images)

	coord.RequestCardImage(card.ID)

	waitFor(t, func() bool { return len(published.all()) == 1 })
	require.Equal(t, 1, images.CallCount())
	assert.Contains(t, images.Calls[0], "meaning: the cat",
		"translation failure falls back to the stored text")

	updated, err := cards.GetByID(context.Background(), card.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ImageRef, "image generation proceeds without translation")
}

func TestCardWithImageSkipsGeneration(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	card := addCard(t, cards)
	ref := "images/existing.png"
	require.NoError(t, cards.SetImageRef(context.Background(), card.ID, ref))

	images := &mocks.MockImageGenerator{}
	coord, published := newTestCoordinator(t, cards, images)

	coord.RequestCardImage(card.ID)

	// Give the worker a chance to pick up the job.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, images.CallCount())
	assert.Empty(t, published.all())
}

func TestGenerationFailureIsDropped(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	card := addCard(t, cards)
	images := &mocks.MockImageGenerator{Err: generation.ErrServiceUnavailable}
	coord, published := newTestCoordinator(t, cards, images)

	coord.RequestCardImage(card.ID)

	waitFor(t, func() bool { return images.CallCount() == 1 })

	updated, err := cards.GetByID(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.ImageRef, "failed generation leaves the card untouched")
	assert.Empty(t, published.all())

	// The slot is released, a later request retries.
	coord.RequestCardImage(card.ID)
	waitFor(t, func() bool { return images.CallCount() == 2 })
}

func TestInFlightRequestsAreDeduplicated(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	card := addCard(t, cards)

	started := make(chan struct{})
	unblock := make(chan struct{})
	images := &mocks.MockImageGenerator{
		GenerateImageFn: func(ctx context.Context, prompt string) (string, error) {
			close(started)
			<-unblock
			return "images/katze.png", nil
		},
	}
	coord, published := newTestCoordinator(t, cards, images)

	coord.RequestCardImage(card.ID)
	<-started

	// Duplicates while the first is running are ignored.
	coord.RequestCardImage(card.ID)
	coord.RequestCardImage(card.ID)
	close(unblock)

	waitFor(t, func() bool { return len(published.all()) == 1 })
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, published.all(), 1)
	assert.Equal(t, 1, images.CallCount())
}

func TestSessionArtPublished(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	images := &mocks.MockImageGenerator{Ref: "images/art.png"}
	coord, published := newTestCoordinator(t, cards, images)

	userID := uuid.New()
	coord.RequestSessionArt(userID)

	waitFor(t, func() bool { return len(published.all()) == 1 })
	art := published.all()[0].(events.SessionArtReady)
	assert.Equal(t, userID, art.UserID)
	assert.Equal(t, "images/art.png", art.ImageRef)
}

func TestMissingCardIsDropped(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	images := &mocks.MockImageGenerator{}
	coord, published := newTestCoordinator(t, cards, images)

	coord.RequestCardImage(uuid.New())

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, images.CallCount())
	assert.Empty(t, published.all())
}
