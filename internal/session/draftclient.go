package session

// draftclient.go implements the debounced autosave-to-draft client. The
// debounce timer is owned here, with explicit arm/cancel, decoupled from
// anything that re-renders: a save fires only after the quiet period
// elapses with no further ScheduleSave call.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
)

// DraftClient wraps a DraftStore with debounced saves. Save failures are
// logged and remembered as a transient state; they never block editing and
// the next debounce tick retries with the latest snapshot.
type DraftClient struct {
	store  DraftStore
	delay  time.Duration
	logger *slog.Logger

	// saveTimeout bounds each background save call.
	saveTimeout time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *envelope.Draft
	closed  bool

	// lastErr is the most recent save failure, cleared on success.
	lastErr error
	// saved is signalled after every save attempt (tests).
	saved chan saveOutcome
}

type saveOutcome struct {
	LastSaved time.Time
	Err       error
}

// NewDraftClient creates a draft client that saves delay after the last
// ScheduleSave call with no subsequent call in between.
func NewDraftClient(store DraftStore, delay time.Duration, logger *slog.Logger) *DraftClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &DraftClient{
		store:       store,
		delay:       delay,
		logger:      logger,
		saveTimeout: 10 * time.Second,
		saved:       make(chan saveOutcome, 16),
	}
}

// ScheduleSave (re)arms the debounce timer with a snapshot of the envelope.
// Repeated calls within the quiet period coalesce into a single save of the
// latest snapshot.
//
// Never arms while the session authors a template: drafts resume request
// sessions only.
func (c *DraftClient) ScheduleSave(env *envelope.Envelope, mode envelope.Mode) {
	if !mode.Autosaves() || env.IsTemplate {
		return
	}

	draft := env.ToDraft()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending = &draft
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.flush)
}

// flush runs on the timer goroutine once the quiet period elapses.
func (c *DraftClient) flush() {
	c.mu.Lock()
	draft := c.pending
	c.pending = nil
	closed := c.closed
	c.mu.Unlock()

	if draft == nil || closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()

	lastSaved, err := c.store.Save(ctx, *draft)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		// transient: editing continues, the next debounce tick retries
		c.logger.Warn("draft autosave failed",
			slog.String("document_id", draft.DocumentID),
			slog.String("error", err.Error()),
		)
	} else {
		c.logger.Debug("draft autosaved",
			slog.String("document_id", draft.DocumentID),
			slog.Time("last_saved", lastSaved),
		)
	}

	select {
	case c.saved <- saveOutcome{LastSaved: lastSaved, Err: err}:
	default:
	}
}

// SaveNow writes the envelope's draft immediately, bypassing the debounce.
func (c *DraftClient) SaveNow(ctx context.Context, env *envelope.Envelope, mode envelope.Mode) error {
	if !mode.Autosaves() || env.IsTemplate {
		return nil
	}
	_, err := c.store.Save(ctx, env.ToDraft())
	if err != nil {
		return envelope.WrapPersistenceError(err, "failed to save draft")
	}
	return nil
}

// Load returns the most recent draft for the document.
func (c *DraftClient) Load(ctx context.Context, documentID string) (envelope.Draft, bool, error) {
	draft, ok, err := c.store.Load(ctx, documentID)
	if err != nil {
		return envelope.Draft{}, false, envelope.WrapPersistenceError(err, "failed to load draft")
	}
	return draft, ok, nil
}

// Discard deletes the document's draft and cancels any pending save so a
// stale snapshot cannot be written back after finalization.
func (c *DraftClient) Discard(ctx context.Context, documentID string) error {
	c.Cancel()
	if err := c.store.Discard(ctx, documentID); err != nil {
		return envelope.WrapPersistenceError(err, "failed to discard draft")
	}
	return nil
}

// Cancel stops the debounce timer and drops the pending snapshot.
func (c *DraftClient) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
}

// Close cancels any pending save permanently. A closed client never writes
// again (no dangling write after teardown).
func (c *DraftClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
}

// LastError returns the most recent save failure, or nil. Surfaced as a
// transient "not yet saved" indicator.
func (c *DraftClient) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
