package study

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/events"
)

// Message kinds held by the outbox.
const (
	MessageKindQuestion = "question"
	MessageKindAnswer   = "answer"
	MessageKindFinished = "finished"
)

// Button is one tappable action under a message. Action carries the
// callback payload the channel sends back, mirroring the inbound events:
// "answer:<card_id>" or "grade:<view_id>:<grade>".
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Message is the latest outbound presentation for a user: the card text
// to render plus the buttons that drive the next step.
type Message struct {
	Kind     string    `json:"kind"`
	Text     string    `json:"text,omitempty"`
	ImageRef string    `json:"image_ref,omitempty"`
	CardID   uuid.UUID `json:"card_id,omitempty"`
	ViewID   uuid.UUID `json:"view_id,omitempty"`
	Buttons  []Button  `json:"buttons,omitempty"`
}

// Outbox holds the latest outbound message per user. It subscribes
// synchronously to the presentation events, so by the time a Publish
// call returns, the channel adapter can read the reply here.
type Outbox struct {
	mu     sync.RWMutex
	latest map[uuid.UUID]Message
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{latest: make(map[uuid.UUID]Message)}
}

// RegisterHandlers subscribes the outbox on the bus.
func (o *Outbox) RegisterHandlers(bus *events.Bus) {
	bus.Subscribe(events.TypeCardQuestionShown, events.Sync, o.handleQuestionShown)
	bus.Subscribe(events.TypeCardAnswerShown, events.Sync, o.handleAnswerShown)
	bus.Subscribe(events.TypeStudySessionFinished, events.Sync, o.handleSessionFinished)
	bus.Subscribe(events.TypeSessionArtReady, events.Sync, o.handleSessionArtReady)
}

// Latest returns the user's current outbound message.
func (o *Outbox) Latest(userID uuid.UUID) (Message, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	msg, ok := o.latest[userID]
	return msg, ok
}

func (o *Outbox) set(userID uuid.UUID, msg Message) {
	o.mu.Lock()
	o.latest[userID] = msg
	o.mu.Unlock()
}

func (o *Outbox) handleQuestionShown(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.CardQuestionShown)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}
	o.set(ev.UserID, Message{
		Kind:     MessageKindQuestion,
		Text:     ev.Front,
		ImageRef: ev.ImageRef,
		CardID:   ev.CardID,
		Buttons: []Button{
			{Label: "Show answer", Action: "answer:" + ev.CardID.String()},
		},
	})
	return nil
}

func (o *Outbox) handleAnswerShown(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.CardAnswerShown)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}
	buttons := make([]Button, 0, len(domain.AllGrades()))
	for _, grade := range domain.AllGrades() {
		buttons = append(buttons, Button{
			Label:  string(grade),
			Action: fmt.Sprintf("grade:%s:%s", ev.ViewID, grade),
		})
	}
	o.set(ev.UserID, Message{
		Kind:    MessageKindAnswer,
		Text:    ev.Front + "\n\n" + ev.Back,
		CardID:  ev.CardID,
		ViewID:  ev.ViewID,
		Buttons: buttons,
	})
	return nil
}

func (o *Outbox) handleSessionFinished(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.StudySessionFinished)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}
	o.set(ev.UserID, Message{
		Kind: MessageKindFinished,
		Text: "All done for today.",
	})
	return nil
}

// handleSessionArtReady attaches the completion artwork to the finish
// message, if the user is still looking at one.
func (o *Outbox) handleSessionArtReady(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.SessionArtReady)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event, event.EventType())
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	msg, ok := o.latest[ev.UserID]
	if !ok || msg.Kind != MessageKindFinished {
		return nil
	}
	msg.ImageRef = ev.ImageRef
	o.latest[ev.UserID] = msg
	return nil
}
