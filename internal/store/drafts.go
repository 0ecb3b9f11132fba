package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/session"
)

var _ session.DraftStore = (*Store)(nil)

// Load returns the most recent draft for the document.
func (s *Store) Load(ctx context.Context, documentID string) (envelope.Draft, bool, error) {
	var payload []byte
	var lastSaved time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT payload, last_saved FROM drafts WHERE document_id = $1`,
		documentID,
	).Scan(&payload, &lastSaved)
	if errors.Is(err, pgx.ErrNoRows) {
		return envelope.Draft{}, false, nil
	}
	if err != nil {
		return envelope.Draft{}, false, fmt.Errorf("failed to load draft: %w", err)
	}

	var draft envelope.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return envelope.Draft{}, false, fmt.Errorf("failed to decode draft payload: %w", err)
	}
	draft.LastSaved = lastSaved
	return draft, true, nil
}

// Save upserts the draft and returns the server-assigned lastSaved time.
func (s *Store) Save(ctx context.Context, draft envelope.Draft) (time.Time, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to encode draft payload: %w", err)
	}

	var lastSaved time.Time
	err = s.pool.QueryRow(ctx, `
		INSERT INTO drafts (document_id, payload, last_saved)
		VALUES ($1, $2, now())
		ON CONFLICT (document_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			last_saved = now()
		RETURNING last_saved`,
		draft.DocumentID, payload,
	).Scan(&lastSaved)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to save draft: %w", err)
	}
	return lastSaved, nil
}

// Discard deletes the draft. Deleting a missing draft is not an error.
func (s *Store) Discard(ctx context.Context, documentID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM drafts WHERE document_id = $1`, documentID,
	); err != nil {
		return fmt.Errorf("failed to discard draft: %w", err)
	}
	return nil
}
