package study

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxQuestionMessage(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(nil)
	outbox := NewOutbox()
	outbox.RegisterHandlers(bus)

	userID, cardID := uuid.New(), uuid.New()
	require.NoError(t, bus.Publish(context.Background(), events.CardQuestionShown{
		UserID:   userID,
		CardID:   cardID,
		Front:    "die Katze",
		ImageRef: "images/katze.png",
	}))

	msg, ok := outbox.Latest(userID)
	require.True(t, ok)
	assert.Equal(t, MessageKindQuestion, msg.Kind)
	assert.Equal(t, "die Katze", msg.Text)
	assert.Equal(t, "images/katze.png", msg.ImageRef)
	require.Len(t, msg.Buttons, 1)
	assert.Equal(t, "answer:"+cardID.String(), msg.Buttons[0].Action)
}

func TestOutboxAnswerMessageCarriesGradeButtons(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(nil)
	outbox := NewOutbox()
	outbox.RegisterHandlers(bus)

	userID, viewID := uuid.New(), uuid.New()
	require.NoError(t, bus.Publish(context.Background(), events.CardAnswerShown{
		UserID: userID,
		ViewID: viewID,
		CardID: uuid.New(),
		Front:  "die Katze",
		Back:   "the cat",
	}))

	msg, ok := outbox.Latest(userID)
	require.True(t, ok)
	assert.Equal(t, MessageKindAnswer, msg.Kind)
	assert.Contains(t, msg.Text, "the cat")
	require.Len(t, msg.Buttons, 4)
	assert.Equal(t, fmt.Sprintf("grade:%s:again", viewID), msg.Buttons[0].Action)
	assert.Equal(t, fmt.Sprintf("grade:%s:easy", viewID), msg.Buttons[3].Action)
}

func TestOutboxKeepsOnlyLatestMessage(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(nil)
	outbox := NewOutbox()
	outbox.RegisterHandlers(bus)

	userID := uuid.New()
	require.NoError(t, bus.Publish(context.Background(), events.CardQuestionShown{
		UserID: userID, CardID: uuid.New(), Front: "first",
	}))
	require.NoError(t, bus.Publish(context.Background(), events.StudySessionFinished{
		UserID: userID,
	}))

	msg, ok := outbox.Latest(userID)
	require.True(t, ok)
	assert.Equal(t, MessageKindFinished, msg.Kind)
}

func TestOutboxSessionArtAttachesToFinishMessage(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(nil)
	outbox := NewOutbox()
	outbox.RegisterHandlers(bus)

	userID := uuid.New()
	require.NoError(t, bus.Publish(context.Background(), events.StudySessionFinished{
		UserID: userID,
	}))
	require.NoError(t, bus.Publish(context.Background(), events.SessionArtReady{
		UserID:   userID,
		ImageRef: "images/art.png",
	}))

	msg, ok := outbox.Latest(userID)
	require.True(t, ok)
	assert.Equal(t, MessageKindFinished, msg.Kind)
	assert.Equal(t, "images/art.png", msg.ImageRef)
}

func TestOutboxSessionArtIgnoredMidSession(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(nil)
	outbox := NewOutbox()
	outbox.RegisterHandlers(bus)

	userID := uuid.New()
	require.NoError(t, bus.Publish(context.Background(), events.CardQuestionShown{
		UserID: userID, CardID: uuid.New(), Front: "die Katze",
	}))
	require.NoError(t, bus.Publish(context.Background(), events.SessionArtReady{
		UserID:   userID,
		ImageRef: "images/art.png",
	}))

	msg, ok := outbox.Latest(userID)
	require.True(t, ok)
	assert.Equal(t, MessageKindQuestion, msg.Kind)
	assert.Empty(t, msg.ImageRef)
}

func TestOutboxIsolatesUsers(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(nil)
	outbox := NewOutbox()
	outbox.RegisterHandlers(bus)

	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, bus.Publish(context.Background(), events.CardQuestionShown{
		UserID: alice, CardID: uuid.New(), Front: "die Katze",
	}))

	_, ok := outbox.Latest(bob)
	assert.False(t, ok)
}
