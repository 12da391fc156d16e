package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/events"
	"github.com/lernkarte/lernkarte/internal/generation"
	"github.com/lernkarte/lernkarte/internal/store"
)

type jobKind int

const (
	jobCardImage jobKind = iota
	jobSessionArt
)

type job struct {
	kind jobKind
	id   uuid.UUID // card id or user id, depending on kind
}

// CoordinatorConfig holds the coordinator's tuning knobs.
type CoordinatorConfig struct {
	// WorkerCount is the number of concurrent workers. Values below one
	// fall back to one.
	WorkerCount int

	// QueueSize bounds the pending-job channel. A full queue drops new
	// requests with a log line rather than blocking the session loop.
	QueueSize int

	// JobTimeout bounds one job's generation calls.
	JobTimeout time.Duration

	// TargetLanguage is the language card explanations are translated
	// into before they are folded into an image prompt.
	TargetLanguage string
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		WorkerCount:    2,
		QueueSize:      64,
		JobTimeout:     2 * time.Minute,
		TargetLanguage: "English",
	}
}

// Coordinator accepts illustration requests from the session loop and
// processes them on background workers.
type Coordinator struct {
	cards      store.CardStore
	translator generation.Translator
	images     generation.ImageGenerator
	publisher  events.Publisher
	cfg        CoordinatorConfig
	logger     *slog.Logger

	queue  chan job
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

// NewCoordinator creates a stopped coordinator; call Start to begin
// processing. A nil translator disables explanation translation and
// prompts use the card's text as stored.
func NewCoordinator(
	cards store.CardStore,
	translator generation.Translator,
	images generation.ImageGenerator,
	publisher events.Publisher,
	cfg CoordinatorConfig,
	logger *slog.Logger,
) *Coordinator {
	if cards == nil {
		panic("card store cannot be nil")
	}
	if images == nil {
		panic("image generator cannot be nil")
	}
	if publisher == nil {
		panic("publisher cannot be nil")
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cards:      cards,
		translator: translator,
		images:     images,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "task_coordinator")),
		queue:      make(chan job, cfg.QueueSize),
		inflight:   make(map[uuid.UUID]struct{}),
	}
}

// Start launches the worker goroutines.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i)
	}
	c.logger.Info("coordinator started", slog.Int("workers", c.cfg.WorkerCount))
}

// Stop cancels in-flight jobs and waits for the workers to drain.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("coordinator stopped")
}

// RequestCardImage enqueues illustration work for a card. Duplicate
// requests for a card already queued or running are ignored.
func (c *Coordinator) RequestCardImage(cardID uuid.UUID) {
	c.enqueue(job{kind: jobCardImage, id: cardID})
}

// RequestSessionArt enqueues completion art for a user's finished session.
func (c *Coordinator) RequestSessionArt(userID uuid.UUID) {
	c.enqueue(job{kind: jobSessionArt, id: userID})
}

func (c *Coordinator) enqueue(j job) {
	c.mu.Lock()
	if _, dup := c.inflight[j.id]; dup {
		c.mu.Unlock()
		return
	}
	c.inflight[j.id] = struct{}{}
	c.mu.Unlock()

	select {
	case c.queue <- j:
	default:
		c.release(j.id)
		c.logger.Warn("job queue full, dropping request",
			slog.String("id", j.id.String()))
	}
}

func (c *Coordinator) release(id uuid.UUID) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

func (c *Coordinator) worker(ctx context.Context, n int) {
	defer c.wg.Done()
	log := c.logger.With(slog.Int("worker", n))

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-c.queue:
			c.process(ctx, log, j)
		}
	}
}

func (c *Coordinator) process(ctx context.Context, log *slog.Logger, j job) {
	defer c.release(j.id)
	defer func() {
		if p := recover(); p != nil {
			log.Error("job panicked",
				slog.String("id", j.id.String()),
				slog.Any("panic", p))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.JobTimeout)
	defer cancel()

	var err error
	switch j.kind {
	case jobCardImage:
		err = c.generateCardImage(ctx, j.id)
	case jobSessionArt:
		err = c.generateSessionArt(ctx, j.id)
	}
	if err != nil {
		// Best-effort work: log and drop, the session is unaffected.
		log.Error("job failed",
			slog.String("id", j.id.String()),
			slog.String("error", err.Error()))
	}
}

func (c *Coordinator) generateCardImage(ctx context.Context, cardID uuid.UUID) error {
	card, err := c.cards.GetByID(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to load card: %w", err)
	}
	if card.HasImage() {
		return nil
	}

	prompt := fmt.Sprintf(
		"A simple, memorable illustration of the concept %q (meaning: %s). No text in the image.",
		card.Front, c.translateExplanation(ctx, card.Back))

	ref, err := c.images.GenerateImage(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to generate card image: %w", err)
	}

	if err := c.cards.SetImageRef(ctx, cardID, ref); err != nil {
		return fmt.Errorf("failed to store image reference: %w", err)
	}

	c.logger.Info("card image generated",
		slog.String("card_id", cardID.String()),
		slog.String("image_ref", ref))

	return c.publisher.Publish(ctx, events.ImageGenerated{
		CardID:   cardID,
		ImageRef: ref,
	})
}

// translateExplanation renders a card's explanation in the configured
// language for the image prompt. A missing translator or a failed call
// falls back to the text as stored.
func (c *Coordinator) translateExplanation(ctx context.Context, text string) string {
	if c.translator == nil {
		return text
	}
	translated, err := c.translator.Translate(ctx, text, c.cfg.TargetLanguage)
	if err != nil {
		c.logger.Warn("explanation translation failed, prompting with original text",
			slog.String("error", err.Error()))
		return text
	}
	return translated
}

func (c *Coordinator) generateSessionArt(ctx context.Context, userID uuid.UUID) error {
	// The date in the prompt gives each day's finish its own artwork
	// despite the generator's prompt-keyed caching.
	prompt := fmt.Sprintf(
		"A cheerful illustration celebrating a completed study session on %s. No text in the image.",
		time.Now().UTC().Format("2006-01-02"))

	ref, err := c.images.GenerateImage(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to generate session art: %w", err)
	}

	return c.publisher.Publish(ctx, events.SessionArtReady{
		UserID:   userID,
		ImageRef: ref,
	})
}
